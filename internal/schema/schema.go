package schema

// Schema is the type registry for one GraphQL schema: every named type keyed by
// name plus the root operation type names. Registries are immutable once built;
// transforms that reshape a registry (rename, filter) construct a new one.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type // All named types keyed by name
	Directives       map[string]*Directive
	Description      string
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field      // For OBJECT and INTERFACE
	Interfaces     []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes  []string      // For INTERFACE and UNION
	EnumValues     []*EnumValue  // For ENUM
	InputFields    []*InputValue // For INPUT_OBJECT
	SpecifiedByURL *string
	OneOf          bool
}

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	IsDeprecated      bool
	DeprecationReason string
}

// Argument returns the declared argument with the given name, or nil.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

// Helper functions for TypeRef
func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

// Clone returns a deep copy of the reference.
func (t *TypeRef) Clone() *TypeRef {
	if t == nil {
		return nil
	}
	return &TypeRef{Kind: t.Kind, OfType: t.OfType.Clone(), Named: t.Named}
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of Non-Null or List wrapping and returns the inner type.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }

// IsComposite reports whether the type carries a selection set
// (object, interface or union).
func (t *Type) IsComposite() bool {
	return t != nil && (t.Kind == TypeKindObject || t.Kind == TypeKindInterface || t.Kind == TypeKindUnion)
}

// IsAbstract reports whether the type is an interface or union.
func (t *Type) IsAbstract() bool {
	return t != nil && (t.Kind == TypeKindInterface || t.Kind == TypeKindUnion)
}

// IsLeaf reports whether the type carries no selection set (scalar or enum).
func (t *Type) IsLeaf() bool {
	return t != nil && (t.Kind == TypeKindScalar || t.Kind == TypeKindEnum)
}

// typenameMetaField is the synthetic definition answering __typename lookups.
var typenameMetaField = &Field{Name: "__typename", Type: NonNullType(NamedType("String"))}

// GetField resolves a field definition on the given parent type.
// The __typename meta-field is answered synthetically on every composite type;
// real fields exist on objects and interfaces only.
func (s *Schema) GetField(parent *Type, name string) *Field {
	if parent == nil {
		return nil
	}
	if name == "__typename" && parent.IsComposite() {
		return typenameMetaField
	}
	for _, f := range parent.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// PossibleTypesOf returns the concrete object type names a value of the named
// type may have at runtime: the type itself for objects, declared members for
// unions, and every object implementing it for interfaces.
func (s *Schema) PossibleTypesOf(name string) []string {
	t := s.Types[name]
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TypeKindObject:
		return []string{t.Name}
	case TypeKindUnion:
		return t.PossibleTypes
	case TypeKindInterface:
		if len(t.PossibleTypes) > 0 {
			return t.PossibleTypes
		}
		var out []string
		for _, cand := range s.Types {
			if cand.Kind != TypeKindObject {
				continue
			}
			for _, iface := range cand.Interfaces {
				if iface == t.Name {
					out = append(out, cand.Name)
					break
				}
			}
		}
		return out
	default:
		return nil
	}
}

// TypesCompatible reports whether a fragment with type condition b can apply to
// a value currently typed as a: true when the two names are equal or their
// possible concrete types overlap (the implements-or-equals check).
func (s *Schema) TypesCompatible(a, b string) bool {
	if a == b {
		return true
	}
	if s.Types[a] == nil || s.Types[b] == nil {
		return false
	}
	pb := make(map[string]struct{})
	for _, n := range s.PossibleTypesOf(b) {
		pb[n] = struct{}{}
	}
	for _, n := range s.PossibleTypesOf(a) {
		if _, ok := pb[n]; ok {
			return true
		}
	}
	return false
}
