package executor

import (
	"context"
	"fmt"

	language "github.com/hanpama/stitch/internal/language"
	schema "github.com/hanpama/stitch/internal/schema"
)

// Resolver produces the value for one field. source is the parent object value
// (nil for root fields), args are coerced argument values, and info carries the
// field's execution context so resolvers can delegate the in-flight selection.
type Resolver func(ctx context.Context, source any, args map[string]any, info ResolveInfo) (any, error)

// ResolverMap registers resolvers keyed "TypeName.fieldName".
type ResolverMap map[string]Resolver

// Resolver returns the resolver registered for objectType.field, or nil.
func (m ResolverMap) Resolver(objectType, field string) Resolver {
	if m == nil {
		return nil
	}
	return m[objectType+"."+field]
}

// TypeResolver maps a value of an abstract type to its concrete type name.
type TypeResolver func(abstractType string, value any) (string, error)

// ResolveInfo is the per-field execution context handed to resolvers.
type ResolveInfo struct {
	FieldName           string
	Field               *language.Field   // the field node being resolved
	FieldGroup          []*language.Field // all merged field nodes for the response key
	Path                Path
	ParentType          *schema.Type
	ReturnType          *schema.TypeRef
	Operation           language.Operation
	VariableDefinitions language.VariableDefinitionList
	Fragments           language.FragmentDefinitionList
	VariableValues      map[string]any
	Schema              *schema.Schema
}

// ResponseKey returns the key a field occupies in the response map: its alias
// when present, its name otherwise.
func ResponseKey(f *language.Field) string { return responseKey(f) }

// RawValue strips an Annotated wrapper from a source value, for resolvers that
// read sibling data directly.
func RawValue(source any) any { return unwrapAnnotated(source) }

// defaultFieldResolver looks the response key up on map-shaped sources.
// It is used for every field without a registered resolver.
func defaultFieldResolver(_ context.Context, source any, _ map[string]any, info ResolveInfo) (any, error) {
	if source == nil {
		return nil, nil
	}
	if m, ok := source.(map[string]any); ok {
		return m[responseKey(info.Field)], nil
	}
	return nil, fmt.Errorf("cannot resolve field %q on value of type %T", info.FieldName, source)
}

// defaultTypeResolver probes map-shaped values for an embedded __typename.
func defaultTypeResolver(abstractType string, value any) (string, error) {
	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type for abstract type %s", abstractType)
}

func responseKey(f *language.Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}
