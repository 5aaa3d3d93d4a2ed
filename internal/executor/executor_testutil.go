package executor

import (
	"context"
	"testing"

	language "github.com/hanpama/stitch/internal/language"
	schema "github.com/hanpama/stitch/internal/schema"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// mustBuildSchema builds a registry from SDL and fails the test on error.
func mustBuildSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(sdl)
	if err != nil {
		t.Fatalf("schema error: %v", err)
	}
	return s
}

// valueResolver returns a Resolver that always yields val.
func valueResolver(val any) Resolver {
	return func(ctx context.Context, source any, args map[string]any, info ResolveInfo) (any, error) {
		return val, nil
	}
}

// errorResolver returns a Resolver that always fails with err.
func errorResolver(err error) Resolver {
	return func(ctx context.Context, source any, args map[string]any, info ResolveInfo) (any, error) {
		return nil, err
	}
}
