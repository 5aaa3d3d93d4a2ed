package transform

import (
	"fmt"

	language "github.com/hanpama/stitch/internal/language"
	schema "github.com/hanpama/stitch/internal/schema"
)

// RenameTypes projects a target schema under new type names. The rename
// function maps an original type name to its exposed name; returning "" keeps
// the original. Built-in scalars are never renamed. The projected registry is
// what the gateway publishes; at delegation time requests written against the
// projected names are rewritten back to the target's names (fragment type
// conditions, inline fragment conditions, variable definition types) and
// __typename values in responses are rewritten forward to the projected names.
type RenameTypes struct {
	projected *schema.Schema
	renamed   map[string]string // original -> projected
	reverse   map[string]string // projected -> original
}

// NewRenameTypes builds the projection eagerly so naming collisions surface at
// construction instead of at request time.
func NewRenameTypes(target *schema.Schema, rename func(name string) string) (*RenameTypes, error) {
	t := &RenameTypes{
		renamed: map[string]string{},
		reverse: map[string]string{},
	}
	for name := range target.Types {
		if isBuiltinScalar(name) {
			continue
		}
		newName := rename(name)
		if newName == "" || newName == name {
			continue
		}
		if prior, clash := t.reverse[newName]; clash {
			return nil, fmt.Errorf("rename collision: %s and %s both map to %s", prior, name, newName)
		}
		if _, exists := target.Types[newName]; exists {
			// Colliding with an existing type is fine only when that type is
			// itself renamed out of the way.
			if other := rename(newName); other == "" || other == newName {
				return nil, fmt.Errorf("rename collision: %s maps to existing type %s", name, newName)
			}
		}
		t.renamed[name] = newName
		t.reverse[newName] = name
	}
	t.projected = t.projectSchema(target)
	return t, nil
}

// Schema returns the projected registry carrying the exposed names.
func (t *RenameTypes) Schema() *schema.Schema { return t.projected }

func (t *RenameTypes) rename(name string) string {
	if newName, ok := t.renamed[name]; ok {
		return newName
	}
	return name
}

func (t *RenameTypes) unrename(name string) string {
	if orig, ok := t.reverse[name]; ok {
		return orig
	}
	return name
}

func (t *RenameTypes) projectSchema(target *schema.Schema) *schema.Schema {
	out := schema.NewSchema(target.Description)
	out.SetQueryType(t.rename(target.QueryType))
	out.SetMutationType(t.rename(target.MutationType))
	out.SetSubscriptionType(t.rename(target.SubscriptionType))
	for name, typ := range target.Types {
		if isBuiltinScalar(name) {
			out.AddType(typ)
			continue
		}
		copied := typ.Clone()
		copied.Name = t.rename(name)
		for i, iface := range copied.Interfaces {
			copied.Interfaces[i] = t.rename(iface)
		}
		for i, possible := range copied.PossibleTypes {
			copied.PossibleTypes[i] = t.rename(possible)
		}
		for _, f := range copied.Fields {
			t.renameRef(f.Type)
			for _, arg := range f.Arguments {
				t.renameRef(arg.Type)
			}
		}
		for _, in := range copied.InputFields {
			t.renameRef(in.Type)
		}
		out.AddType(copied)
	}
	for _, d := range target.Directives {
		copied := d.Clone()
		for _, arg := range copied.Arguments {
			t.renameRef(arg.Type)
		}
		out.AddDirective(copied)
	}
	return out
}

// renameRef rewrites the named leaf of a (cloned) type reference in place.
func (t *RenameTypes) renameRef(ref *schema.TypeRef) {
	for ref.OfType != nil {
		ref = ref.OfType
	}
	ref.Named = t.rename(ref.Named)
}

// TransformRequest rewrites projected type names back to the target's names
// everywhere the document mentions a type.
func (t *RenameTypes) TransformRequest(req *Request) (*Request, error) {
	operations := make(language.OperationList, 0, len(req.Document.Operations))
	for _, op := range req.Document.Operations {
		copied := *op
		copied.VariableDefinitions = t.unrenameVariableDefinitions(op.VariableDefinitions)
		copied.SelectionSet = t.unrenameSelectionSet(op.SelectionSet)
		operations = append(operations, &copied)
	}
	fragments := make(language.FragmentDefinitionList, 0, len(req.Document.Fragments))
	for _, frag := range req.Document.Fragments {
		copied := *frag
		copied.TypeCondition = t.unrename(frag.TypeCondition)
		copied.SelectionSet = t.unrenameSelectionSet(frag.SelectionSet)
		fragments = append(fragments, &copied)
	}
	return &Request{
		Document:  &language.QueryDocument{Operations: operations, Fragments: fragments},
		Variables: req.Variables,
		Operation: req.Operation,
	}, nil
}

func (t *RenameTypes) unrenameSelectionSet(set language.SelectionSet) language.SelectionSet {
	if len(set) == 0 {
		return nil
	}
	out := make(language.SelectionSet, 0, len(set))
	for _, sel := range set {
		switch node := sel.(type) {
		case *language.Field:
			copied := *node
			copied.SelectionSet = t.unrenameSelectionSet(node.SelectionSet)
			out = append(out, &copied)
		case *language.InlineFragment:
			copied := *node
			copied.TypeCondition = t.unrename(node.TypeCondition)
			copied.SelectionSet = t.unrenameSelectionSet(node.SelectionSet)
			out = append(out, &copied)
		case *language.FragmentSpread:
			out = append(out, node)
		}
	}
	return out
}

func (t *RenameTypes) unrenameVariableDefinitions(defs language.VariableDefinitionList) language.VariableDefinitionList {
	if len(defs) == 0 {
		return nil
	}
	out := make(language.VariableDefinitionList, 0, len(defs))
	for _, def := range defs {
		copied := *def
		copied.Type = t.unrenameASTType(def.Type)
		out = append(out, &copied)
	}
	return out
}

func (t *RenameTypes) unrenameASTType(in *language.Type) *language.Type {
	if in == nil {
		return nil
	}
	return &language.Type{
		NamedType: t.unrename(in.NamedType),
		Elem:      t.unrenameASTType(in.Elem),
		NonNull:   in.NonNull,
	}
}

// TransformResponse rewrites __typename values from the target's names to the
// projected names, recursively through objects and lists.
func (t *RenameTypes) TransformResponse(res *Response, _ *Request) (*Response, error) {
	t.renameTypenames(res.Data)
	return res, nil
}

func (t *RenameTypes) renameTypenames(v any) {
	switch val := v.(type) {
	case map[string]any:
		if name, ok := val["__typename"].(string); ok {
			val["__typename"] = t.rename(name)
		}
		for _, child := range val {
			t.renameTypenames(child)
		}
	case []any:
		for _, child := range val {
			t.renameTypenames(child)
		}
	}
}

func isBuiltinScalar(name string) bool {
	switch name {
	case "Int", "Float", "String", "Boolean", "ID":
		return true
	}
	return false
}
