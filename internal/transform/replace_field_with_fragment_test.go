package transform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const accountsSDL = `
type User {
  id: ID!
  name: String
  surname: String
}

type Query {
  userById(id: ID!): User
}
`

// Pattern: Result comparison
func TestReplaceFieldWithFragment_Result(t *testing.T) {
	target := mustBuildSchema(t, accountsSDL)

	t.Run("Computed field swapped for its dependencies", func(t *testing.T) {
		replace, err := NewReplaceFieldWithFragment(target, []FieldFragment{
			{Field: "fullname", Fragment: `fragment F on User { name surname }`},
		})
		require.NoError(t, err)

		req := requestFor(t, `{ userById(id: "u1") { id fullname } }`, nil)
		got, err := replace.TransformRequest(req)
		require.NoError(t, err)

		want := mustParseQuery(t, `{ userById(id: "u1") { id ... on User { name surname } } }`)
		require.Equal(t, printed(want), printed(got.Document))
	})

	t.Run("Replacement composes with schema filtering", func(t *testing.T) {
		replace, err := NewReplaceFieldWithFragment(target, []FieldFragment{
			{Field: "fullname", Fragment: `fragment F on User { name surname }`},
		})
		require.NoError(t, err)
		pipeline := Pipeline{replace, NewFilterToSchema(target)}

		req := requestFor(t, `{ userById(id: "u1") { id fullname } }`, nil)
		got, err := pipeline.Request(req)
		require.NoError(t, err)

		want := mustParseQuery(t, `{ userById(id: "u1") { id ... on User { name surname } } }`)
		require.Equal(t, printed(want), printed(got.Document))
	})

	t.Run("Multiple fragments for one field splice together", func(t *testing.T) {
		replace, err := NewReplaceFieldWithFragment(target, []FieldFragment{
			{Field: "fullname", Fragment: `fragment A on User { name }`},
			{Field: "fullname", Fragment: `fragment B on User { surname }`},
		})
		require.NoError(t, err)

		req := requestFor(t, `{ userById(id: "u1") { fullname } }`, nil)
		got, err := replace.TransformRequest(req)
		require.NoError(t, err)

		want := mustParseQuery(t, `{ userById(id: "u1") { ... on User { name surname } } }`)
		require.Equal(t, printed(want), printed(got.Document))
	})

	t.Run("Non-matching parent type untouched", func(t *testing.T) {
		replace, err := NewReplaceFieldWithFragment(target, []FieldFragment{
			{Field: "id", Fragment: `fragment F on Address { city }`},
		})
		require.NoError(t, err)

		req := requestFor(t, `{ userById(id: "u1") { id } }`, nil)
		got, err := replace.TransformRequest(req)
		require.NoError(t, err)

		require.Equal(t, printed(req.Document), printed(got.Document))
	})

	t.Run("Invalid fragment syntax rejected", func(t *testing.T) {
		_, err := NewReplaceFieldWithFragment(target, []FieldFragment{
			{Field: "fullname", Fragment: `{ not a fragment`},
		})
		require.Error(t, err)
	})
}
