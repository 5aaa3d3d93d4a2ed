package transform

import (
	language "github.com/hanpama/stitch/internal/language"
	schema "github.com/hanpama/stitch/internal/schema"
)

// TypeContext tracks the parent-type stack of a selection-set walk. It has
// value semantics: Push returns a grown copy, so sibling branches never see
// each other's frames.
type TypeContext struct {
	schema *schema.Schema
	stack  []*schema.Type
}

// NewTypeContext starts a walk rooted at root (the operation's root type or a
// fragment's type condition).
func NewTypeContext(s *schema.Schema, root *schema.Type) TypeContext {
	return TypeContext{schema: s, stack: []*schema.Type{root}}
}

// Parent returns the type whose selection set is currently being walked.
func (tc TypeContext) Parent() *schema.Type {
	if len(tc.stack) == 0 {
		return nil
	}
	return tc.stack[len(tc.stack)-1]
}

// Push returns a context one frame deeper. The receiver is unchanged.
func (tc TypeContext) Push(t *schema.Type) TypeContext {
	stack := make([]*schema.Type, len(tc.stack)+1)
	copy(stack, tc.stack)
	stack[len(tc.stack)] = t
	return TypeContext{schema: tc.schema, stack: stack}
}

// Depth returns how many frames deep the walk currently is.
func (tc TypeContext) Depth() int { return len(tc.stack) }

// Schema returns the registry the walk resolves types against.
func (tc TypeContext) Schema() *schema.Schema { return tc.schema }

// FieldType resolves the named type a field selection descends into, or nil
// when the field or its type is unknown to the registry.
func (tc TypeContext) FieldType(f *language.Field) *schema.Type {
	parent := tc.Parent()
	if parent == nil {
		return nil
	}
	def := tc.schema.GetField(parent, f.Name)
	if def == nil {
		return nil
	}
	return tc.schema.Types[schema.GetNamedType(def.Type)]
}

// Rewriter rewrites one selection node given the current type context.
// Returning nil removes the node; returning a different node replaces it.
// Replacement nodes are not revisited.
type Rewriter func(sel language.Selection, tc TypeContext) language.Selection

// RewriteSelectionSet walks set depth-first in document order, maintaining the
// type context across fields and fragment conditions, and returns a new set
// with every node passed through fn. Children are rewritten before their
// parent node is offered to fn, so fn sees the already-rewritten subtree.
func RewriteSelectionSet(tc TypeContext, set language.SelectionSet, fn Rewriter) language.SelectionSet {
	if len(set) == 0 {
		return nil
	}
	out := make(language.SelectionSet, 0, len(set))
	for _, sel := range set {
		switch node := sel.(type) {
		case *language.Field:
			next := node
			if child := tc.FieldType(node); child != nil && len(node.SelectionSet) > 0 {
				rewritten := RewriteSelectionSet(tc.Push(child), node.SelectionSet, fn)
				if !sameSelections(rewritten, node.SelectionSet) {
					copied := *node
					copied.SelectionSet = rewritten
					next = &copied
				}
			}
			if replaced := fn(next, tc); replaced != nil {
				out = append(out, replaced)
			}
		case *language.InlineFragment:
			condType := tc.Parent()
			if node.TypeCondition != "" {
				condType = tc.schema.Types[node.TypeCondition]
			}
			next := node
			if condType != nil {
				rewritten := RewriteSelectionSet(tc.Push(condType), node.SelectionSet, fn)
				if !sameSelections(rewritten, node.SelectionSet) {
					copied := *node
					copied.SelectionSet = rewritten
					next = &copied
				}
			}
			if replaced := fn(next, tc); replaced != nil {
				out = append(out, replaced)
			}
		case *language.FragmentSpread:
			if replaced := fn(node, tc); replaced != nil {
				out = append(out, replaced)
			}
		}
	}
	return out
}

func sameSelections(a, b language.SelectionSet) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
