package transform

import (
	schema "github.com/hanpama/stitch/internal/schema"
)

// FilterTypes projects a target schema with some types hidden: types failing
// the predicate disappear, along with every field, argument, input field,
// interface reference and union member that mentions them. Root types that
// fail the predicate leave the projection without that operation kind.
// Built-in scalars always survive. Requests against the projection are
// already valid against the target, so no request or response rewriting is
// needed.
type FilterTypes struct {
	Identity

	projected *schema.Schema
}

func NewFilterTypes(target *schema.Schema, keep func(*schema.Type) bool) *FilterTypes {
	kept := map[string]bool{}
	for name, typ := range target.Types {
		kept[name] = isBuiltinScalar(name) || keep(typ)
	}

	out := schema.NewSchema(target.Description)
	if kept[target.QueryType] {
		out.SetQueryType(target.QueryType)
	}
	if kept[target.MutationType] {
		out.SetMutationType(target.MutationType)
	}
	if kept[target.SubscriptionType] {
		out.SetSubscriptionType(target.SubscriptionType)
	}

	for name, typ := range target.Types {
		if !kept[name] {
			continue
		}
		copied := typ.Clone()
		copied.Interfaces = filterNames(copied.Interfaces, kept)
		copied.PossibleTypes = filterNames(copied.PossibleTypes, kept)
		copied.Fields = filterFields(copied.Fields, kept)
		copied.InputFields = filterInputValues(copied.InputFields, kept)
		out.AddType(copied)
	}
	for _, d := range target.Directives {
		copied := d.Clone()
		copied.Arguments = filterInputValues(copied.Arguments, kept)
		out.AddDirective(copied)
	}
	return &FilterTypes{projected: out}
}

// Schema returns the projected registry with hidden types removed.
func (t *FilterTypes) Schema() *schema.Schema { return t.projected }

func filterNames(names []string, kept map[string]bool) []string {
	var out []string
	for _, name := range names {
		if kept[name] {
			out = append(out, name)
		}
	}
	return out
}

func filterFields(fields []*schema.Field, kept map[string]bool) []*schema.Field {
	var out []*schema.Field
	for _, f := range fields {
		if !kept[schema.GetNamedType(f.Type)] {
			continue
		}
		f.Arguments = filterInputValues(f.Arguments, kept)
		out = append(out, f)
	}
	return out
}

func filterInputValues(values []*schema.InputValue, kept map[string]bool) []*schema.InputValue {
	var out []*schema.InputValue
	for _, v := range values {
		if kept[schema.GetNamedType(v.Type)] {
			out = append(out, v)
		}
	}
	return out
}
