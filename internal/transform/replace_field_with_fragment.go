package transform

import (
	"fmt"

	language "github.com/hanpama/stitch/internal/language"
	schema "github.com/hanpama/stitch/internal/schema"
)

// FieldFragment binds a field name to a fragment whose selections stand in for
// it on delegated requests. Fragment is full fragment-definition syntax; its
// type condition decides which parent types the replacement applies to.
type FieldFragment struct {
	Field    string
	Fragment string
}

// ReplaceFieldWithFragment swaps requested fields for the dependency
// selections a computed field actually needs: whenever a matching field is
// requested under a compatible parent type, it is replaced by an inline
// fragment spreading the configured selections. Several fragments bound to
// the same field are spliced in as siblings. The replaced field itself is
// resolved locally from the expanded data, so responses need no inverse.
type ReplaceFieldWithFragment struct {
	Identity

	source *schema.Schema

	// replacements[fieldName] holds the parsed fragments for that field.
	replacements map[string][]*language.FragmentDefinition
}

// NewReplaceFieldWithFragment builds the transform. source resolves parent
// types while walking incoming selections; the target subschema's registry
// works since replacements key off parent types the target defines.
func NewReplaceFieldWithFragment(source *schema.Schema, pairs []FieldFragment) (*ReplaceFieldWithFragment, error) {
	replacements := map[string][]*language.FragmentDefinition{}
	for _, pair := range pairs {
		doc, err := language.ParseQuery(pair.Fragment)
		if err != nil {
			return nil, fmt.Errorf("parsing fragment for field %q: %w", pair.Field, err)
		}
		if len(doc.Fragments) != 1 || len(doc.Operations) != 0 {
			return nil, fmt.Errorf("field %q wants exactly one fragment definition", pair.Field)
		}
		replacements[pair.Field] = append(replacements[pair.Field], doc.Fragments[0])
	}
	return &ReplaceFieldWithFragment{source: source, replacements: replacements}, nil
}

func (t *ReplaceFieldWithFragment) TransformRequest(req *Request) (*Request, error) {
	operations := make(language.OperationList, 0, len(req.Document.Operations))
	for _, op := range req.Document.Operations {
		copied := *op
		if root := t.rootType(op.Operation); root != nil {
			copied.SelectionSet = RewriteSelectionSet(NewTypeContext(t.source, root), op.SelectionSet, t.rewrite)
		}
		operations = append(operations, &copied)
	}
	fragments := make(language.FragmentDefinitionList, 0, len(req.Document.Fragments))
	for _, frag := range req.Document.Fragments {
		copied := *frag
		if condType := t.source.Types[frag.TypeCondition]; condType != nil {
			copied.SelectionSet = RewriteSelectionSet(NewTypeContext(t.source, condType), frag.SelectionSet, t.rewrite)
		}
		fragments = append(fragments, &copied)
	}
	return &Request{
		Document:  &language.QueryDocument{Operations: operations, Fragments: fragments},
		Variables: req.Variables,
		Operation: req.Operation,
	}, nil
}

func (t *ReplaceFieldWithFragment) rewrite(sel language.Selection, tc TypeContext) language.Selection {
	field, ok := sel.(*language.Field)
	if !ok {
		return sel
	}
	parent := tc.Parent()
	if parent == nil || len(t.replacements[field.Name]) == 0 {
		return sel
	}
	var groups []*language.InlineFragment
	for _, frag := range t.replacements[field.Name] {
		if !t.source.TypesCompatible(parent.Name, frag.TypeCondition) {
			continue
		}
		var group *language.InlineFragment
		for _, g := range groups {
			if g.TypeCondition == frag.TypeCondition {
				group = g
				break
			}
		}
		if group == nil {
			group = &language.InlineFragment{TypeCondition: frag.TypeCondition}
			groups = append(groups, group)
		}
		group.SelectionSet = append(group.SelectionSet, frag.SelectionSet...)
	}
	switch len(groups) {
	case 0:
		return sel
	case 1:
		return groups[0]
	default:
		// Distinct conditions stay siblings under a condition-less frame.
		frame := &language.InlineFragment{}
		for _, g := range groups {
			frame.SelectionSet = append(frame.SelectionSet, g)
		}
		return frame
	}
}

func (t *ReplaceFieldWithFragment) rootType(op language.Operation) *schema.Type {
	switch op {
	case language.Mutation:
		return t.source.GetMutationType()
	case language.Subscription:
		return t.source.GetSubscriptionType()
	default:
		return t.source.GetQueryType()
	}
}
