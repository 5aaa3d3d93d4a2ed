package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const petSDL = `
interface Node { id: ID! }

type User implements Node {
  id: ID!
  name: String
  nickname: String
  pets: [Pet!]
}

type Dog implements Node {
  id: ID!
  barks: Boolean!
}

type Cat implements Node {
  id: ID!
  meows: Boolean!
}

union Pet = Dog | Cat

type Query {
  userById(id: ID!): User
  me: User!
}
`

// Pattern: Result comparison
func TestExecuteRequest_Result(t *testing.T) {
	t.Run("Scalar fields with alias", func(t *testing.T) {
		sch := mustBuildSchema(t, petSDL)
		resolvers := ResolverMap{
			"Query.userById": func(ctx context.Context, source any, args map[string]any, info ResolveInfo) (any, error) {
				return map[string]any{"id": args["id"], "name": "joh"}, nil
			},
		}
		exec := NewExecutor(sch, resolvers)
		doc := mustParseQuery(t, `{ userById(id: "u1") { id handle: name } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data: map[string]any{
				"userById": map[string]any{"id": "u1", "handle": "joh"},
			},
			Errors: []GraphQLError{},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Variables feed arguments", func(t *testing.T) {
		sch := mustBuildSchema(t, petSDL)
		resolvers := ResolverMap{
			"Query.userById": func(ctx context.Context, source any, args map[string]any, info ResolveInfo) (any, error) {
				return map[string]any{"id": args["id"]}, nil
			},
		}
		exec := NewExecutor(sch, resolvers)
		doc := mustParseQuery(t, `query ($id: ID!) { userById(id: $id) { id } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", map[string]any{"id": "u7"}, nil)

		wantRes := &ExecutionResult{
			Data:   map[string]any{"userById": map[string]any{"id": "u7"}},
			Errors: []GraphQLError{},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Missing required variable", func(t *testing.T) {
		sch := mustBuildSchema(t, petSDL)
		exec := NewExecutor(sch, nil)
		doc := mustParseQuery(t, `query ($id: ID!) { userById(id: $id) { id } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		if gotRes.Data != nil || len(gotRes.Errors) != 1 {
			t.Fatalf("expected single request error, got %+v", gotRes)
		}
	})

	t.Run("Default resolver walks map data", func(t *testing.T) {
		sch := mustBuildSchema(t, petSDL)
		resolvers := ResolverMap{
			"Query.userById": valueResolver(map[string]any{
				"id":   "u1",
				"pets": []any{map[string]any{"__typename": "Dog", "id": "d1", "barks": true}},
			}),
		}
		exec := NewExecutor(sch, resolvers)
		doc := mustParseQuery(t, `{ userById(id: "u1") { id pets { __typename ... on Dog { barks } } } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data: map[string]any{
				"userById": map[string]any{
					"id":   "u1",
					"pets": []any{map[string]any{"__typename": "Dog", "barks": true}},
				},
			},
			Errors: []GraphQLError{},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Interface fragment spreads via implements check", func(t *testing.T) {
		sch := mustBuildSchema(t, petSDL)
		resolvers := ResolverMap{
			"Query.userById": valueResolver(map[string]any{"id": "u1", "name": "joh"}),
		}
		exec := NewExecutor(sch, resolvers)
		doc := mustParseQuery(t, `{
			userById(id: "u1") { ...NodeBits name }
		}
		fragment NodeBits on Node { id }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data:   map[string]any{"userById": map[string]any{"id": "u1", "name": "joh"}},
			Errors: []GraphQLError{},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})
}

// Pattern: Result comparison
func TestErrors_LocatedPaths_Result(t *testing.T) {
	t.Run("Resolver error nulls only its subtree", func(t *testing.T) {
		sch := mustBuildSchema(t, petSDL)
		resolvers := ResolverMap{
			"Query.userById": valueResolver(map[string]any{"id": "u1"}),
			"User.name":      errorResolver(fmt.Errorf("boom")),
		}
		exec := NewExecutor(sch, resolvers)
		doc := mustParseQuery(t, `{ userById(id: "u1") { id name } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data:   map[string]any{"userById": map[string]any{"id": "u1", "name": nil}},
			Errors: []GraphQLError{{Message: "boom", Path: Path{"userById", "name"}}},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("List index in path", func(t *testing.T) {
		sch := mustBuildSchema(t, petSDL)
		resolvers := ResolverMap{
			"Query.userById": valueResolver(map[string]any{
				"pets": []any{
					map[string]any{"__typename": "Dog", "barks": true},
					map[string]any{"__typename": "Mouse"},
				},
			}),
		}
		exec := NewExecutor(sch, resolvers)
		doc := mustParseQuery(t, `{ userById(id: "u1") { pets { ... on Dog { barks } } } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		// The second element resolves to a type outside the union: the
		// non-null inner type nulls the whole list, located at the element.
		wantData := map[string]any{"userById": map[string]any{"pets": nil}}
		if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
			t.Fatalf("data mismatch (-want +got):\n%s", diff)
		}
		if len(gotRes.Errors) != 1 {
			t.Fatalf("expected one error, got %+v", gotRes.Errors)
		}
		if diff := cmp.Diff(Path{"userById", "pets", 1}, gotRes.Errors[0].Path); diff != "" {
			t.Fatalf("error path mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("GraphQLError extensions survive relocation", func(t *testing.T) {
		sch := mustBuildSchema(t, petSDL)
		resolvers := ResolverMap{
			"Query.userById": valueResolver(map[string]any{"id": "u1"}),
			"User.name": errorResolver(GraphQLError{
				Message:    "denied",
				Path:       Path{"somewhere", "else"},
				Extensions: map[string]any{"code": "FORBIDDEN"},
			}),
		}
		exec := NewExecutor(sch, resolvers)
		doc := mustParseQuery(t, `{ userById(id: "u1") { name } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantErrs := []GraphQLError{{
			Message:    "denied",
			Path:       Path{"userById", "name"},
			Extensions: map[string]any{"code": "FORBIDDEN"},
		}}
		if diff := cmp.Diff(wantErrs, gotRes.Errors); diff != "" {
			t.Fatalf("errors mismatch (-want +got):\n%s", diff)
		}
	})
}

// Pattern: Result comparison
func TestNonNullPropagation_Result(t *testing.T) {
	t.Run("Root non-null becomes null entry", func(t *testing.T) {
		sch := mustBuildSchema(t, petSDL)
		resolvers := ResolverMap{
			"Query.me": valueResolver(nil),
		}
		exec := NewExecutor(sch, resolvers)
		doc := mustParseQuery(t, `{ me { id } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data: map[string]any{"me": nil},
			Errors: []GraphQLError{{
				Message: "Cannot return null for non-nullable field me",
				Path:    Path{"me"},
			}},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Nested non-null bubbles to nullable ancestor", func(t *testing.T) {
		sch := mustBuildSchema(t, petSDL)
		resolvers := ResolverMap{
			"Query.userById": valueResolver(map[string]any{"name": "joh"}),
			"User.id":        valueResolver(nil),
		}
		exec := NewExecutor(sch, resolvers)
		doc := mustParseQuery(t, `{ userById(id: "u1") { id name } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantData := map[string]any{"userById": nil}
		if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
			t.Fatalf("data mismatch (-want +got):\n%s", diff)
		}
	})
}

// Pattern: Result comparison
func TestSkipInclude_Result(t *testing.T) {
	sch := mustBuildSchema(t, petSDL)
	resolvers := ResolverMap{
		"Query.userById": valueResolver(map[string]any{"id": "u1", "name": "joh", "nickname": "j"}),
	}
	exec := NewExecutor(sch, resolvers)
	doc := mustParseQuery(t, `query ($yes: Boolean!, $no: Boolean!) {
		userById(id: "u1") {
			id
			name @skip(if: $yes)
			nickname @include(if: $no)
		}
	}`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", map[string]any{"yes": true, "no": false}, nil)

	wantRes := &ExecutionResult{
		Data:   map[string]any{"userById": map[string]any{"id": "u1"}},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}
