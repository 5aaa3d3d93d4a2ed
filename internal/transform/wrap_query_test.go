package transform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/stitch/internal/executor"
	language "github.com/hanpama/stitch/internal/language"
)

// Pattern: Result comparison
func TestWrapQuery_Result(t *testing.T) {
	wrap, err := NewWrapQuery(
		[]string{"customerById"},
		func(sel language.SelectionSet) language.SelectionSet {
			return language.SelectionSet{&language.Field{
				Alias:        "address",
				Name:         "address",
				SelectionSet: sel,
			}}
		},
		func(v any) any {
			m, ok := v.(map[string]any)
			if !ok {
				return nil
			}
			return m["address"]
		},
	)
	require.NoError(t, err)

	t.Run("Request subtree wrapped at path", func(t *testing.T) {
		req := requestFor(t, `{ customerById(id: "c1") { city zip } }`, nil)

		got, err := wrap.TransformRequest(req)
		require.NoError(t, err)

		want := mustParseQuery(t, `{ customerById(id: "c1") { address { city zip } } }`)
		require.Equal(t, printed(want), printed(got.Document))
	})

	t.Run("Response value unwrapped by extractor", func(t *testing.T) {
		res := &executor.ExecutionResult{Data: map[string]any{
			"customerById": map[string]any{
				"address": map[string]any{"city": "Berlin", "zip": "10115"},
			},
		}}

		got, err := wrap.TransformResponse(res, nil)
		require.NoError(t, err)

		wantData := map[string]any{
			"customerById": map[string]any{"city": "Berlin", "zip": "10115"},
		}
		if diff := cmp.Diff(wantData, got.Data); diff != "" {
			t.Fatalf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Missing path leaves request and response alone", func(t *testing.T) {
		req := requestFor(t, `{ other { id } }`, nil)

		gotReq, err := wrap.TransformRequest(req)
		require.NoError(t, err)
		require.Equal(t, printed(req.Document), printed(gotReq.Document))

		res := &executor.ExecutionResult{Data: map[string]any{"other": map[string]any{"id": "x"}}}
		gotRes, err := wrap.TransformResponse(res, nil)
		require.NoError(t, err)
		wantData := map[string]any{"other": map[string]any{"id": "x"}}
		if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
			t.Fatalf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Empty path rejected at construction", func(t *testing.T) {
		_, err := NewWrapQuery(nil,
			func(sel language.SelectionSet) language.SelectionSet { return sel },
			func(v any) any { return v },
		)
		require.Error(t, err)
	})
}

// Pattern: Result comparison
func TestExtractField_Result(t *testing.T) {
	extract := &ExtractField{
		From: []string{"createCustomer", "customer"},
		To:   []string{"createCustomer"},
	}

	t.Run("Request subtree hoisted from From to To", func(t *testing.T) {
		req := requestFor(t, `mutation { createCustomer(name: "n") { customer { id name } } }`, nil)

		got, err := extract.TransformRequest(req)
		require.NoError(t, err)

		want := mustParseQuery(t, `mutation { createCustomer(name: "n") { id name } }`)
		require.Equal(t, printed(want), printed(got.Document))
	})

	t.Run("Response value re-nested into original shape", func(t *testing.T) {
		res := &executor.ExecutionResult{Data: map[string]any{
			"createCustomer": map[string]any{"id": "c1", "name": "n"},
		}}

		got, err := extract.TransformResponse(res, nil)
		require.NoError(t, err)

		wantData := map[string]any{
			"createCustomer": map[string]any{
				"customer": map[string]any{"id": "c1", "name": "n"},
			},
		}
		if diff := cmp.Diff(wantData, got.Data); diff != "" {
			t.Fatalf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Missing From path is a no-op", func(t *testing.T) {
		req := requestFor(t, `mutation { deleteCustomer(id: "c1") }`, nil)

		got, err := extract.TransformRequest(req)
		require.NoError(t, err)
		require.Equal(t, printed(req.Document), printed(got.Document))
	})
}
