package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/stitch/internal/executor"
)

// recordingTransform appends its tag to a shared trace in both directions.
type recordingTransform struct {
	Identity

	tag   string
	trace *[]string
}

func (t recordingTransform) TransformRequest(req *Request) (*Request, error) {
	*t.trace = append(*t.trace, "req:"+t.tag)
	return req, nil
}

func (t recordingTransform) TransformResponse(res *Response, req *Request) (*Response, error) {
	*t.trace = append(*t.trace, "res:"+t.tag)
	return res, nil
}

// Pattern: Property check
func TestPipeline_OnionOrder(t *testing.T) {
	var trace []string
	pipeline := Pipeline{
		recordingTransform{tag: "a", trace: &trace},
		recordingTransform{tag: "b", trace: &trace},
		recordingTransform{tag: "c", trace: &trace},
	}

	req := requestFor(t, `{ x }`, nil)
	req, err := pipeline.Request(req)
	require.NoError(t, err)
	_, err = pipeline.Response(&executor.ExecutionResult{}, req)
	require.NoError(t, err)

	require.Equal(t, []string{"req:a", "req:b", "req:c", "res:c", "res:b", "res:a"}, trace)
}

// Pattern: Property check
func TestIdentity_PassesThrough(t *testing.T) {
	req := requestFor(t, `{ x }`, map[string]any{"v": 1})

	got, err := Identity{}.TransformRequest(req)
	require.NoError(t, err)
	require.Same(t, req, got)

	res := &executor.ExecutionResult{}
	gotRes, err := Identity{}.TransformResponse(res, req)
	require.NoError(t, err)
	require.Same(t, res, gotRes)
}
