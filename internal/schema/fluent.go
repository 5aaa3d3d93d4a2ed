package schema

// Fluent constructors used by the SDL builder, the merger and tests.

func NewSchema(description string) *Schema {
	return &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	s.Directives[d.Name] = d
	return s
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type {
	t.Fields = append(t.Fields, f)
	return t
}

func (t *Type) AddInterface(name string) *Type {
	t.Interfaces = append(t.Interfaces, name)
	return t
}

func (t *Type) AddPossibleType(name string) *Type {
	t.PossibleTypes = append(t.PossibleTypes, name)
	return t
}

func (t *Type) AddEnumValue(v *EnumValue) *Type {
	t.EnumValues = append(t.EnumValues, v)
	return t
}

func (t *Type) AddInputField(v *InputValue) *Type {
	t.InputFields = append(t.InputFields, v)
	return t
}

func (t *Type) SetOneOf(oneOf bool) *Type { t.OneOf = oneOf; return t }

// Clone returns a deep copy of the type. Field and input value slices are
// copied so the clone can be reshaped without touching the source registry.
func (t *Type) Clone() *Type {
	out := &Type{
		Name:           t.Name,
		Kind:           t.Kind,
		Description:    t.Description,
		SpecifiedByURL: t.SpecifiedByURL,
		OneOf:          t.OneOf,
	}
	out.Interfaces = append(out.Interfaces, t.Interfaces...)
	out.PossibleTypes = append(out.PossibleTypes, t.PossibleTypes...)
	for _, f := range t.Fields {
		out.Fields = append(out.Fields, f.Clone())
	}
	for _, v := range t.EnumValues {
		c := *v
		out.EnumValues = append(out.EnumValues, &c)
	}
	for _, v := range t.InputFields {
		out.InputFields = append(out.InputFields, v.Clone())
	}
	return out
}

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) AddArgument(v *InputValue) *Field {
	f.Arguments = append(f.Arguments, v)
	return f
}

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

// Clone returns a deep copy of the field definition.
func (f *Field) Clone() *Field {
	out := &Field{
		Name:              f.Name,
		Description:       f.Description,
		Type:              f.Type.Clone(),
		IsDeprecated:      f.IsDeprecated,
		DeprecationReason: f.DeprecationReason,
	}
	for _, a := range f.Arguments {
		out.Arguments = append(out.Arguments, a.Clone())
	}
	return out
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(val any) *InputValue {
	v.DefaultValue = val
	return v
}

func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

// Clone returns a deep copy of the input value.
func (v *InputValue) Clone() *InputValue {
	c := *v
	c.Type = v.Type.Clone()
	return &c
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (v *EnumValue) Deprecate(reason string) *EnumValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(r bool) *Directive { d.IsRepeatable = r; return d }

func (d *Directive) AddArgument(v *InputValue) *Directive {
	d.Arguments = append(d.Arguments, v)
	return d
}

// Clone returns a deep copy of the directive definition.
func (d *Directive) Clone() *Directive {
	out := &Directive{
		Name:         d.Name,
		Description:  d.Description,
		IsRepeatable: d.IsRepeatable,
	}
	out.Locations = append(out.Locations, d.Locations...)
	for _, a := range d.Arguments {
		out.Arguments = append(out.Arguments, a.Clone())
	}
	return out
}
