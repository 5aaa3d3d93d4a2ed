package merge

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	delegate "github.com/hanpama/stitch/internal/delegate"
	executor "github.com/hanpama/stitch/internal/executor"
	language "github.com/hanpama/stitch/internal/language"
	schema "github.com/hanpama/stitch/internal/schema"
	transform "github.com/hanpama/stitch/internal/transform"
)

const usersSDL = `
type User {
  id: ID!
  name: String
  surname: String
}

type Query {
  userById(id: ID!): User
}
`

const reviewsSDL = `
type Review {
  id: ID!
  body: String
}

type Query {
  reviewsByUser(userId: ID!): [Review]
}
`

var userData = map[string]map[string]any{
	"u1": {"id": "u1", "name": "joh", "surname": "gats"},
}

func usersSubschema(t *testing.T, overrides executor.ResolverMap) Subschema {
	t.Helper()
	sch, err := schema.BuildFromSDL(usersSDL)
	require.NoError(t, err)
	resolvers := executor.ResolverMap{
		"Query.userById": func(ctx context.Context, source any, args map[string]any, info executor.ResolveInfo) (any, error) {
			id, _ := args["id"].(string)
			if u, ok := userData[id]; ok {
				return u, nil
			}
			return nil, nil
		},
	}
	for key, r := range overrides {
		resolvers[key] = r
	}
	return Subschema{
		Schema:   sch,
		Executor: delegate.Local{Exec: executor.NewExecutor(sch, resolvers)},
	}
}

func reviewsSubschema(t *testing.T) Subschema {
	t.Helper()
	sch, err := schema.BuildFromSDL(reviewsSDL)
	require.NoError(t, err)
	resolvers := executor.ResolverMap{
		"Query.reviewsByUser": func(ctx context.Context, source any, args map[string]any, info executor.ResolveInfo) (any, error) {
			return []any{
				map[string]any{"id": "r1", "body": "solid"},
				map[string]any{"id": "r2", "body": "would stitch again"},
			}, nil
		},
	}
	return Subschema{
		Schema:   sch,
		Executor: delegate.Local{Exec: executor.NewExecutor(sch, resolvers)},
	}
}

// cannedExecutor answers every delegated request with a fixed result, standing
// in for a subschema whose responses the test controls exactly.
type cannedExecutor struct {
	res *executor.ExecutionResult
}

func (c cannedExecutor) Execute(ctx context.Context, req *transform.Request) *executor.ExecutionResult {
	return c.res
}

func execute(t *testing.T, stitched *Stitched, query string, vars map[string]any) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return stitched.NewExecutor().ExecuteRequest(context.Background(), doc, "", vars, nil)
}

// Pattern: Result comparison
func TestMerge_Result(t *testing.T) {
	t.Run("Root fields from both subschemas answer in one operation", func(t *testing.T) {
		stitched, err := Merge([]Subschema{usersSubschema(t, nil), reviewsSubschema(t)})
		require.NoError(t, err)

		gotRes := execute(t, stitched, `{
			userById(id: "u1") { id name }
			reviewsByUser(userId: "u1") { id body }
		}`, nil)

		wantRes := &executor.ExecutionResult{
			Data: map[string]any{
				"userById": map[string]any{"id": "u1", "name": "joh"},
				"reviewsByUser": []any{
					map[string]any{"id": "r1", "body": "solid"},
					map[string]any{"id": "r2", "body": "would stitch again"},
				},
			},
			Errors: []executor.GraphQLError{},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Same-named types merge field by field", func(t *testing.T) {
		profilesSDL := `
			type User { id: ID! bio: String }
			type Query { profileById(id: ID!): User }
		`
		profiles, err := schema.BuildFromSDL(profilesSDL)
		require.NoError(t, err)

		stitched, err := Merge([]Subschema{
			usersSubschema(t, nil),
			{Schema: profiles, Executor: delegate.Local{Exec: executor.NewExecutor(profiles, nil)}},
		})
		require.NoError(t, err)

		user := stitched.Schema.Types["User"]
		require.NotNil(t, user)
		var names []string
		for _, f := range user.Fields {
			names = append(names, f.Name)
		}
		require.ElementsMatch(t, []string{"id", "name", "surname", "bio"}, names)
	})

	t.Run("Variables flow through delegation", func(t *testing.T) {
		stitched, err := Merge([]Subschema{usersSubschema(t, nil)})
		require.NoError(t, err)

		gotRes := execute(t, stitched,
			`query ($id: ID!) { userById(id: $id) { name } }`,
			map[string]any{"id": "u1"})

		wantData := map[string]any{"userById": map[string]any{"name": "joh"}}
		if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
			t.Fatalf("data mismatch (-want +got):\n%s", diff)
		}
	})
}

// Pattern: Result comparison
func TestMerge_ComputedField_Result(t *testing.T) {
	users := usersSubschema(t, nil)

	replace, err := transform.NewReplaceFieldWithFragment(users.Schema, []transform.FieldFragment{
		{Field: "fullname", Fragment: `fragment FullnameDeps on User { name surname }`},
	})
	require.NoError(t, err)

	users.Transforms = []transform.Transform{replace}
	users.TypeDefs = `extend type User { fullname: String }`
	users.Resolvers = executor.ResolverMap{
		"User.fullname": func(ctx context.Context, source any, args map[string]any, info executor.ResolveInfo) (any, error) {
			m, _ := executor.RawValue(source).(map[string]any)
			name, _ := m["name"].(string)
			surname, _ := m["surname"].(string)
			return strings.TrimSpace(name + " " + surname), nil
		},
	}

	stitched, err := Merge([]Subschema{users})
	require.NoError(t, err)

	gotRes := execute(t, stitched, `{ userById(id: "u1") { id fullname } }`, nil)

	wantRes := &executor.ExecutionResult{
		Data: map[string]any{
			"userById": map[string]any{"id": "u1", "fullname": "joh gats"},
		},
		Errors: []executor.GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Error handling
func TestMerge_ErrorLocality(t *testing.T) {
	t.Run("Delegated field error stays local to its path", func(t *testing.T) {
		users := usersSubschema(t, executor.ResolverMap{
			"User.surname": func(ctx context.Context, source any, args map[string]any, info executor.ResolveInfo) (any, error) {
				return nil, fmt.Errorf("surname unavailable")
			},
		})
		stitched, err := Merge([]Subschema{users})
		require.NoError(t, err)

		gotRes := execute(t, stitched, `{ userById(id: "u1") { id name surname } }`, nil)

		wantRes := &executor.ExecutionResult{
			Data: map[string]any{
				"userById": map[string]any{"id": "u1", "name": "joh", "surname": nil},
			},
			Errors: []executor.GraphQLError{{
				Message: "surname unavailable",
				Path:    executor.Path{"userById", "surname"},
			}},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Failed root field does not break the sibling subschema", func(t *testing.T) {
		users := usersSubschema(t, executor.ResolverMap{
			"Query.userById": func(ctx context.Context, source any, args map[string]any, info executor.ResolveInfo) (any, error) {
				return nil, fmt.Errorf("user store down")
			},
		})
		stitched, err := Merge([]Subschema{users, reviewsSubschema(t)})
		require.NoError(t, err)

		gotRes := execute(t, stitched, `{
			userById(id: "u1") { id }
			reviewsByUser(userId: "u1") { id }
		}`, nil)

		wantData := map[string]any{
			"userById": nil,
			"reviewsByUser": []any{
				map[string]any{"id": "r1"},
				map[string]any{"id": "r2"},
			},
		}
		if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
			t.Fatalf("data mismatch (-want +got):\n%s", diff)
		}
		require.Len(t, gotRes.Errors, 1)
		require.Equal(t, executor.Path{"userById"}, gotRes.Errors[0].Path)
	})
}

// Pattern: Error handling
func TestMerge_DelegatedErrorSurfacing(t *testing.T) {
	const petsSDL = `
		type User { id: ID! pets: [String] }
		type Query { userById(id: ID!): User }
	`
	subschemaWith := func(t *testing.T, res *executor.ExecutionResult) Subschema {
		t.Helper()
		sch, err := schema.BuildFromSDL(petsSDL)
		require.NoError(t, err)
		return Subschema{Schema: sch, Executor: cannedExecutor{res: res}}
	}

	t.Run("List element error keeps its index path", func(t *testing.T) {
		sub := subschemaWith(t, &executor.ExecutionResult{
			Data: map[string]any{"userById": map[string]any{"id": "u1", "pets": []any{"rex", nil}}},
			Errors: []executor.GraphQLError{{
				Message: "pet service down",
				Path:    executor.Path{"userById", "pets", 1},
			}},
		})
		stitched, err := Merge([]Subschema{sub})
		require.NoError(t, err)

		gotRes := execute(t, stitched, `{ userById(id: "u1") { id pets } }`, nil)

		wantRes := &executor.ExecutionResult{
			Data: map[string]any{"userById": map[string]any{"id": "u1", "pets": []any{"rex", nil}}},
			Errors: []executor.GraphQLError{{
				Message: "pet service down",
				Path:    executor.Path{"userById", "pets", 1},
			}},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Pathless subschema error attaches to the delegating field", func(t *testing.T) {
		sub := subschemaWith(t, &executor.ExecutionResult{
			Data:   map[string]any{"userById": map[string]any{"id": "u1"}},
			Errors: []executor.GraphQLError{{Message: "backend degraded"}},
		})
		stitched, err := Merge([]Subschema{sub})
		require.NoError(t, err)

		gotRes := execute(t, stitched, `{ userById(id: "u1") { id } }`, nil)

		wantRes := &executor.ExecutionResult{
			Data: map[string]any{"userById": map[string]any{"id": "u1"}},
			Errors: []executor.GraphQLError{{
				Message: "backend degraded",
				Path:    executor.Path{"userById"},
			}},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Root-located error with data attaches to the delegating field", func(t *testing.T) {
		sub := subschemaWith(t, &executor.ExecutionResult{
			Data: map[string]any{"userById": map[string]any{"id": "u1"}},
			Errors: []executor.GraphQLError{{
				Message: "user partially loaded",
				Path:    executor.Path{"userById"},
			}},
		})
		stitched, err := Merge([]Subschema{sub})
		require.NoError(t, err)

		gotRes := execute(t, stitched, `{ userById(id: "u1") { id } }`, nil)

		require.Equal(t, map[string]any{"userById": map[string]any{"id": "u1"}}, gotRes.Data)
		require.Len(t, gotRes.Errors, 1)
		require.Equal(t, "user partially loaded", gotRes.Errors[0].Message)
		require.Equal(t, executor.Path{"userById"}, gotRes.Errors[0].Path)
	})
}

// Pattern: Error handling
func TestMerge_InputValidation(t *testing.T) {
	t.Run("Empty input rejected", func(t *testing.T) {
		_, err := Merge(nil)
		require.Error(t, err)
	})

	t.Run("Extension of unknown type rejected", func(t *testing.T) {
		users := usersSubschema(t, nil)
		users.TypeDefs = `extend type Planet { name: String }`
		_, err := Merge([]Subschema{users})
		require.Error(t, err)
	})
}

// Pattern: Result comparison
func TestMerge_TopLevelResolverOverride(t *testing.T) {
	stitched, err := Merge([]Subschema{usersSubschema(t, nil)}, WithResolvers(executor.ResolverMap{
		"User.name": func(ctx context.Context, source any, args map[string]any, info executor.ResolveInfo) (any, error) {
			return "overridden", nil
		},
	}))
	require.NoError(t, err)

	gotRes := execute(t, stitched, `{ userById(id: "u1") { name } }`, nil)

	wantData := map[string]any{"userById": map[string]any{"name": "overridden"}}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}
