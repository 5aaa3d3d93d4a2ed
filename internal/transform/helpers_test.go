package transform

import (
	"testing"

	language "github.com/hanpama/stitch/internal/language"
	schema "github.com/hanpama/stitch/internal/schema"
)

func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

func mustBuildSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(sdl)
	if err != nil {
		t.Fatalf("schema error: %v", err)
	}
	return s
}

// printed normalizes a document through the formatter so structurally equal
// documents compare equal as strings.
func printed(doc *language.QueryDocument) string {
	return language.FormatQuery(doc)
}

func requestFor(t *testing.T, q string, vars map[string]any) *Request {
	t.Helper()
	doc := mustParseQuery(t, q)
	op := language.Query
	if len(doc.Operations) > 0 {
		op = doc.Operations[0].Operation
	}
	return &Request{Document: doc, Variables: vars, Operation: op}
}
