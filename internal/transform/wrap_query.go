package transform

import (
	"fmt"

	language "github.com/hanpama/stitch/internal/language"
)

// WrapQuery rewrites the selection subtree at a fixed field path on the way
// out and undoes the reshaping on the way back: the wrapper receives the
// original subtree and returns the wrapped one, the extractor receives the
// result value produced by the wrapped subtree and returns the value the
// original subtree's shape expects. The request is untouched when the path
// does not resolve.
type WrapQuery struct {
	path      []string
	wrapper   func(language.SelectionSet) language.SelectionSet
	extractor func(any) any
}

func NewWrapQuery(
	path []string,
	wrapper func(language.SelectionSet) language.SelectionSet,
	extractor func(any) any,
) (*WrapQuery, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("wrap query: path must not be empty")
	}
	return &WrapQuery{path: path, wrapper: wrapper, extractor: extractor}, nil
}

func (t *WrapQuery) TransformRequest(req *Request) (*Request, error) {
	operations := make(language.OperationList, 0, len(req.Document.Operations))
	for _, op := range req.Document.Operations {
		sel := rewriteFieldAt(op.SelectionSet, t.path, func(f *language.Field) *language.Field {
			copied := *f
			copied.SelectionSet = t.wrapper(f.SelectionSet)
			return &copied
		})
		copied := *op
		copied.SelectionSet = sel
		operations = append(operations, &copied)
	}
	return &Request{
		Document:  &language.QueryDocument{Operations: operations, Fragments: req.Document.Fragments},
		Variables: req.Variables,
		Operation: req.Operation,
	}, nil
}

func (t *WrapQuery) TransformResponse(res *Response, _ *Request) (*Response, error) {
	data, ok := res.Data.(map[string]any)
	if !ok {
		return res, nil
	}
	v, found := dataAt(data, t.path)
	if !found {
		return res, nil
	}
	setDataAt(data, t.path, t.extractor(v))
	return res, nil
}
