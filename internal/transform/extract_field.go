package transform

import (
	language "github.com/hanpama/stitch/internal/language"
)

// ExtractField moves the selection subtree at path From onto the field at
// path To, flattening an intermediate layer the target schema does not have.
// On the way back it re-nests the result value from To into the shape the
// original request asked for at From. Both directions are no-ops when a path
// does not resolve.
type ExtractField struct {
	From []string
	To   []string
}

func (t *ExtractField) TransformRequest(req *Request) (*Request, error) {
	operations := make(language.OperationList, 0, len(req.Document.Operations))
	for _, op := range req.Document.Operations {
		sel := op.SelectionSet
		if src := fieldAt(sel, t.From); src != nil {
			extracted := src.SelectionSet
			sel = rewriteFieldAt(sel, t.To, func(f *language.Field) *language.Field {
				copied := *f
				copied.SelectionSet = extracted
				return &copied
			})
		}
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

func (t *ExtractField) TransformResponse(res *Response, _ *Request) (*Response, error) {
	data, ok := res.Data.(map[string]any)
	if !ok {
		return res, nil
	}
	v, found := dataAt(data, t.To)
	if !found {
		return res, nil
	}
	if pathHasPrefix(t.From, t.To) {
		// To is an ancestor of From: nest v down the remaining segments.
		suffix := t.From[len(t.To):]
		nested := v
		for i := len(suffix) - 1; i >= 0; i-- {
			nested = map[string]any{suffix[i]: nested}
		}
		setDataAt(data, t.To, nested)
		return res, nil
	}
	deleteDataAt(data, t.To)
	setDataAt(data, t.From, v)
	return res, nil
}
