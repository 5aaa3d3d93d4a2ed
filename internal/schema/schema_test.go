package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testSDL = `
interface Node {
  id: ID!
}

type User implements Node {
  id: ID!
  name: String
  pets(limit: Int = 10): [Pet!]
}

type Dog implements Node {
  id: ID!
  barks: Boolean!
}

union Pet = Dog

enum Mood {
  HAPPY
  GRUMPY @deprecated(reason: "all pets are happy")
}

input PetFilter {
  mood: Mood
  name: String = "rex"
}

type Query {
  userById(id: ID!): User
  node(id: ID!): Node
}
`

func mustBuild(t *testing.T, sdl string) *Schema {
	t.Helper()
	s, err := BuildFromSDL(sdl)
	require.NoError(t, err)
	return s
}

func TestBuildFromSDL(t *testing.T) {
	s := mustBuild(t, testSDL)

	require.Equal(t, "Query", s.QueryType)
	require.Empty(t, s.MutationType)

	user := s.Types["User"]
	require.NotNil(t, user)
	require.Equal(t, TypeKindObject, user.Kind)
	require.Equal(t, []string{"Node"}, user.Interfaces)

	pets := s.GetField(user, "pets")
	require.NotNil(t, pets)
	require.Equal(t, "[Pet!]", renderTypeRef(pets.Type))
	limit := pets.Argument("limit")
	require.NotNil(t, limit)
	require.Equal(t, 10, limit.DefaultValue)

	mood := s.Types["Mood"]
	require.Equal(t, TypeKindEnum, mood.Kind)
	require.Len(t, mood.EnumValues, 2)
	require.True(t, mood.EnumValues[1].IsDeprecated)

	filter := s.Types["PetFilter"]
	require.Equal(t, TypeKindInputObject, filter.Kind)
	require.Equal(t, "rex", filter.InputFields[1].DefaultValue)

	// Builtins attached by identity so Render elides them.
	require.Same(t, stringType, s.Types["String"])
}

func TestGetFieldTypename(t *testing.T) {
	s := mustBuild(t, testSDL)

	for _, name := range []string{"User", "Node", "Pet"} {
		f := s.GetField(s.Types[name], "__typename")
		require.NotNil(t, f, "__typename on %s", name)
		require.Equal(t, "String!", renderTypeRef(f.Type))
	}
	require.Nil(t, s.GetField(s.Types["Mood"], "__typename"))
	require.Nil(t, s.GetField(s.Types["User"], "nope"))
}

func TestTypesCompatible(t *testing.T) {
	s := mustBuild(t, testSDL)

	cases := []struct {
		a, b string
		want bool
	}{
		{"User", "User", true},
		{"User", "Node", true},
		{"Node", "User", true},
		{"Dog", "Pet", true},
		{"Pet", "Dog", true},
		{"User", "Pet", false},
		{"User", "Unknown", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, s.TypesCompatible(tc.a, tc.b), "%s ~ %s", tc.a, tc.b)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	s := mustBuild(t, testSDL)

	sdl := Render(s)
	s2, err := BuildFromSDL(sdl)
	require.NoError(t, err)

	// Rendering the rebuilt schema must reproduce the same SDL.
	if diff := cmp.Diff(sdl, Render(s2)); diff != "" {
		t.Errorf("SDL not stable under rebuild (-want +got):\n%s", diff)
	}
}

func TestRenderSchemaBlock(t *testing.T) {
	s := mustBuild(t, `
schema {
  query: RootQuery
}
type RootQuery {
  ok: Boolean
}
`)
	require.Equal(t, "RootQuery", s.QueryType)
	require.Contains(t, Render(s), "schema {\n  query: RootQuery\n}")
}
