package transform

import (
	language "github.com/hanpama/stitch/internal/language"
	schema "github.com/hanpama/stitch/internal/schema"
)

// FilterToSchema prunes a request down to what a target schema can answer:
// fields the target does not define, arguments it does not declare, fragments
// whose type condition it does not know, and variable definitions that end up
// unreferenced after pruning. Composite fields whose selection set becomes
// empty are deleted, cascading upward; __typename always survives on
// composite parents. It is the terminal transform of every delegation
// pipeline, so earlier transforms may leave selections the target cannot
// serve and rely on it to clean up.
type FilterToSchema struct {
	Identity

	target *schema.Schema
}

func NewFilterToSchema(target *schema.Schema) *FilterToSchema {
	return &FilterToSchema{target: target}
}

// usage accumulates the fragment and variable names referenced by kept nodes.
// Subtree usage is collected into a fresh value and merged into the parent's
// only when the subtree survives, which retracts references that occurred
// solely inside deleted branches.
type usage struct {
	fragments []string
	variables map[string]struct{}
}

func newUsage() *usage {
	return &usage{variables: map[string]struct{}{}}
}

func (u *usage) merge(other *usage) {
	u.fragments = append(u.fragments, other.fragments...)
	for name := range other.variables {
		u.variables[name] = struct{}{}
	}
}

func (u *usage) collectValue(v *language.Value) {
	if v == nil {
		return
	}
	if v.Kind == language.Variable {
		u.variables[v.Raw] = struct{}{}
		return
	}
	for _, child := range v.Children {
		u.collectValue(child.Value)
	}
}

func (u *usage) collectDirectives(list language.DirectiveList) {
	for _, d := range list {
		for _, arg := range d.Arguments {
			u.collectValue(arg.Value)
		}
	}
}

func (t *FilterToSchema) TransformRequest(req *Request) (*Request, error) {
	fragments := map[string]*language.FragmentDefinition{}
	for _, frag := range req.Document.Fragments {
		if t.target.Types[frag.TypeCondition] != nil {
			fragments[frag.Name] = frag
		}
	}

	used := newUsage()
	operations := make(language.OperationList, 0, len(req.Document.Operations))
	for _, op := range req.Document.Operations {
		root := t.rootType(op.Operation)
		var sel language.SelectionSet
		if root != nil {
			opUsed := newUsage()
			sel = t.filterSelectionSet(root, op.SelectionSet, fragments, opUsed)
			used.merge(opUsed)
		}
		operations = append(operations, &language.OperationDefinition{
			Operation:    op.Operation,
			Name:         op.Name,
			Directives:   op.Directives,
			SelectionSet: sel,
			// VariableDefinitions filled below once usage is final
		})
	}

	// Fragment closure: walk the used-fragment worklist, filtering each
	// definition against its own type condition and enqueueing the spreads
	// it still references.
	kept := map[string]*language.FragmentDefinition{}
	queue := append([]string(nil), used.fragments...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, done := kept[name]; done {
			continue
		}
		frag := fragments[name]
		if frag == nil {
			continue
		}
		fragUsed := newUsage()
		sel := t.filterSelectionSet(t.target.Types[frag.TypeCondition], frag.SelectionSet, fragments, fragUsed)
		kept[name] = &language.FragmentDefinition{
			Name:          frag.Name,
			TypeCondition: frag.TypeCondition,
			Directives:    frag.Directives,
			SelectionSet:  sel,
		}
		queue = append(queue, fragUsed.fragments...)
		for v := range fragUsed.variables {
			used.variables[v] = struct{}{}
		}
	}

	for i, op := range req.Document.Operations {
		operations[i].VariableDefinitions = filterVariableDefinitions(op.VariableDefinitions, used.variables)
	}

	var keptFragments language.FragmentDefinitionList
	for _, frag := range req.Document.Fragments {
		if filtered, ok := kept[frag.Name]; ok {
			keptFragments = append(keptFragments, filtered)
		}
	}

	return &Request{
		Document:  &language.QueryDocument{Operations: operations, Fragments: keptFragments},
		Variables: req.Variables,
		Operation: req.Operation,
	}, nil
}

func (t *FilterToSchema) rootType(op language.Operation) *schema.Type {
	switch op {
	case language.Mutation:
		return t.target.GetMutationType()
	case language.Subscription:
		return t.target.GetSubscriptionType()
	default:
		return t.target.GetQueryType()
	}
}

// filterSelectionSet rebuilds set keeping only selections parent can answer in
// the target schema. Usage from a subtree is merged into used only when the
// subtree's node is kept.
func (t *FilterToSchema) filterSelectionSet(
	parent *schema.Type,
	set language.SelectionSet,
	fragments map[string]*language.FragmentDefinition,
	used *usage,
) language.SelectionSet {
	var out language.SelectionSet
	for _, sel := range set {
		switch node := sel.(type) {
		case *language.Field:
			fieldDef := t.target.GetField(parent, node.Name)
			if fieldDef == nil {
				continue
			}
			nodeUsed := newUsage()
			args := t.filterArguments(fieldDef, node.Arguments, nodeUsed)
			fieldType := t.target.Types[schema.GetNamedType(fieldDef.Type)]

			var sub language.SelectionSet
			if fieldType != nil && len(node.SelectionSet) > 0 {
				sub = t.filterSelectionSet(fieldType, node.SelectionSet, fragments, nodeUsed)
			}
			if fieldType != nil && fieldType.IsComposite() && len(sub) == 0 {
				continue
			}
			nodeUsed.collectDirectives(node.Directives)
			used.merge(nodeUsed)
			out = append(out, &language.Field{
				Alias:        node.Alias,
				Name:         node.Name,
				Arguments:    args,
				Directives:   node.Directives,
				SelectionSet: sub,
			})

		case *language.FragmentSpread:
			frag := fragments[node.Name]
			if frag == nil {
				continue
			}
			if !t.target.TypesCompatible(parent.Name, frag.TypeCondition) {
				continue
			}
			used.fragments = append(used.fragments, node.Name)
			used.collectDirectives(node.Directives)
			out = append(out, &language.FragmentSpread{Name: node.Name, Directives: node.Directives})

		case *language.InlineFragment:
			condType := parent
			if node.TypeCondition != "" {
				condType = t.target.Types[node.TypeCondition]
				if condType == nil || !t.target.TypesCompatible(parent.Name, node.TypeCondition) {
					continue
				}
			}
			nodeUsed := newUsage()
			sub := t.filterSelectionSet(condType, node.SelectionSet, fragments, nodeUsed)
			if len(sub) == 0 {
				continue
			}
			nodeUsed.collectDirectives(node.Directives)
			used.merge(nodeUsed)
			out = append(out, &language.InlineFragment{
				TypeCondition: node.TypeCondition,
				Directives:    node.Directives,
				SelectionSet:  sub,
			})
		}
	}
	return out
}

// filterArguments keeps only arguments the field declares, recording variable
// references inside kept values.
func (t *FilterToSchema) filterArguments(fieldDef *schema.Field, args language.ArgumentList, used *usage) language.ArgumentList {
	var out language.ArgumentList
	for _, arg := range args {
		if fieldDef.Argument(arg.Name) == nil {
			continue
		}
		used.collectValue(arg.Value)
		out = append(out, &language.Argument{Name: arg.Name, Value: arg.Value})
	}
	return out
}

func filterVariableDefinitions(defs language.VariableDefinitionList, keep map[string]struct{}) language.VariableDefinitionList {
	var out language.VariableDefinitionList
	for _, def := range defs {
		if _, ok := keep[def.Variable]; ok {
			out = append(out, def)
		}
	}
	return out
}
