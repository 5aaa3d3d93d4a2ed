package transform

import (
	executor "github.com/hanpama/stitch/internal/executor"
	language "github.com/hanpama/stitch/internal/language"
)

// Request is the unit flowing forward through a transform pipeline: a parsed
// query document plus its variable values. Transforms never mutate a Request;
// they return a new one sharing unchanged nodes.
type Request struct {
	Document  *language.QueryDocument
	Variables map[string]any
	Operation language.Operation
}

// Response is the unit flowing backward through the pipeline.
type Response = executor.ExecutionResult

// Transform rewrites a request on the way to a target schema and inverts the
// rewrite on the result coming back. Implementations embed Identity to opt out
// of either direction.
type Transform interface {
	TransformRequest(req *Request) (*Request, error)
	TransformResponse(res *Response, req *Request) (*Response, error)
}

// Identity is the no-op Transform, embeddable for single-direction transforms.
type Identity struct{}

func (Identity) TransformRequest(req *Request) (*Request, error) { return req, nil }

func (Identity) TransformResponse(res *Response, _ *Request) (*Response, error) { return res, nil }

// Pipeline is an ordered list of Transforms composed like middleware: requests
// fold left-to-right, responses fold right-to-left, so the transform applied
// last to the request is the first to see the response.
type Pipeline []Transform

// Request folds req through every transform in order.
func (p Pipeline) Request(req *Request) (*Request, error) {
	for _, t := range p {
		var err error
		req, err = t.TransformRequest(req)
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

// Response folds res through every transform in reverse order. req is the
// fully transformed request the response was produced for.
func (p Pipeline) Response(res *Response, req *Request) (*Response, error) {
	for i := len(p) - 1; i >= 0; i-- {
		var err error
		res, err = p[i].TransformResponse(res, req)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}
