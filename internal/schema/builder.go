package schema

import (
	"strconv"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// BuildFromSDL parses and validates SDL and returns the corresponding Schema.
// Built-in scalars and directives are attached from the shared definitions so
// Render can elide them by identity.
func BuildFromSDL(sdl string) (*Schema, error) {
	return BuildFromSources(&ast.Source{Name: "schema.graphql", Input: sdl})
}

// BuildFromSources builds one Schema from several SDL sources. Later sources
// may extend types declared by earlier ones.
func BuildFromSources(sources ...*ast.Source) (*Schema, error) {
	parsed, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return fromAST(parsed), nil
}

var builtinTypes = map[string]*Type{
	"String":  stringType,
	"Int":     intType,
	"Float":   floatType,
	"Boolean": booleanType,
	"ID":      idType,
}

func fromAST(in *ast.Schema) *Schema {
	s := NewSchema(in.Description)
	if in.Query != nil {
		s.SetQueryType(in.Query.Name)
	}
	if in.Mutation != nil {
		s.SetMutationType(in.Mutation.Name)
	}
	if in.Subscription != nil {
		s.SetSubscriptionType(in.Subscription.Name)
	}
	s.AddType(stringType).
		AddType(intType).
		AddType(floatType).
		AddType(booleanType).
		AddType(idType)
	s.AddDirective(includeDirective).
		AddDirective(skipDirective)

	for name, def := range in.Types {
		if isIntrospectionName(name) {
			continue
		}
		if _, ok := builtinTypes[name]; ok {
			continue
		}
		s.AddType(buildType(in, def))
	}
	for name, def := range in.Directives {
		switch name {
		case "include", "skip", "deprecated", "specifiedBy", "oneOf", "defer":
			continue
		}
		s.AddDirective(buildDirective(def))
	}
	return s
}

func isIntrospectionName(name string) bool {
	return len(name) >= 2 && name[0] == '_' && name[1] == '_'
}

func buildType(in *ast.Schema, def *ast.Definition) *Type {
	var kind TypeKind
	switch def.Kind {
	case ast.Object:
		kind = TypeKindObject
	case ast.Interface:
		kind = TypeKindInterface
	case ast.Union:
		kind = TypeKindUnion
	case ast.Enum:
		kind = TypeKindEnum
	case ast.InputObject:
		kind = TypeKindInputObject
	default:
		kind = TypeKindScalar
	}
	t := NewType(def.Name, kind, def.Description)

	switch kind {
	case TypeKindObject, TypeKindInterface:
		for _, iface := range def.Interfaces {
			t.AddInterface(iface)
		}
		for _, f := range def.Fields {
			if isIntrospectionName(f.Name) {
				continue
			}
			t.AddField(buildField(f))
		}
		if kind == TypeKindInterface {
			for _, impl := range in.PossibleTypes[def.Name] {
				t.AddPossibleType(impl.Name)
			}
		}
	case TypeKindUnion:
		for _, member := range def.Types {
			t.AddPossibleType(member)
		}
	case TypeKindEnum:
		for _, v := range def.EnumValues {
			ev := NewEnumValue(v.Name, v.Description)
			if reason, ok := deprecation(v.Directives); ok {
				ev.Deprecate(reason)
			}
			t.AddEnumValue(ev)
		}
	case TypeKindInputObject:
		t.SetOneOf(def.Directives.ForName("oneOf") != nil)
		for _, f := range def.Fields {
			iv := NewInputValue(f.Name, f.Description, TypeRefFromAST(f.Type))
			if f.DefaultValue != nil {
				iv.SetDefault(valueToGo(f.DefaultValue))
			}
			if reason, ok := deprecation(f.Directives); ok {
				iv.Deprecate(reason)
			}
			t.AddInputField(iv)
		}
	case TypeKindScalar:
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
				url := arg.Value.Raw
				t.SpecifiedByURL = &url
			}
		}
	}
	return t
}

func buildField(def *ast.FieldDefinition) *Field {
	f := NewField(def.Name, def.Description, TypeRefFromAST(def.Type))
	if reason, ok := deprecation(def.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range def.Arguments {
		iv := NewInputValue(arg.Name, arg.Description, TypeRefFromAST(arg.Type))
		if arg.DefaultValue != nil {
			iv.SetDefault(valueToGo(arg.DefaultValue))
		}
		f.AddArgument(iv)
	}
	return f
}

// FieldFromAST converts a standalone field definition (as found in type
// extension documents) to a Field.
func FieldFromAST(def *ast.FieldDefinition) *Field {
	return buildField(def)
}

// DefinitionFromAST converts a standalone type definition to a Type. Interface
// possible types are left empty since a lone definition carries no implementor
// information.
func DefinitionFromAST(def *ast.Definition) *Type {
	return buildType(&ast.Schema{}, def)
}

func buildDirective(def *ast.DirectiveDefinition) *Directive {
	d := NewDirective(def.Name, def.Description).SetRepeatable(def.IsRepeatable)
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range def.Arguments {
		iv := NewInputValue(arg.Name, arg.Description, TypeRefFromAST(arg.Type))
		if arg.DefaultValue != nil {
			iv.SetDefault(valueToGo(arg.DefaultValue))
		}
		d.AddArgument(iv)
	}
	return d
}

func deprecation(directives ast.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}

// TypeRefFromAST converts a gqlparser type expression to a TypeRef.
func TypeRefFromAST(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(TypeRefFromAST(&ast.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return ListType(TypeRefFromAST(t.Elem))
	}
	return nil
}

// valueToGo converts a constant AST value (SDL default values) to a Go value.
func valueToGo(v *ast.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ast.IntValue:
		iv, _ := strconv.Atoi(v.Raw)
		return iv
	case ast.FloatValue:
		fv, _ := strconv.ParseFloat(v.Raw, 64)
		return fv
	case ast.StringValue, ast.BlockValue, ast.EnumValue:
		return v.Raw
	case ast.BooleanValue:
		return v.Raw == "true"
	case ast.NullValue:
		return nil
	case ast.ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = valueToGo(c.Value)
		}
		return out
	case ast.ObjectValue:
		m := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			m[c.Name] = valueToGo(c.Value)
		}
		return m
	default:
		return nil
	}
}
