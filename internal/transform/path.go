package transform

import (
	language "github.com/hanpama/stitch/internal/language"
)

// fieldAt walks a selection set along a path of field names and returns the
// field node at the final element, or nil when any step is missing.
func fieldAt(set language.SelectionSet, path []string) *language.Field {
	if len(path) == 0 {
		return nil
	}
	for _, sel := range set {
		f, ok := sel.(*language.Field)
		if !ok || f.Name != path[0] {
			continue
		}
		if len(path) == 1 {
			return f
		}
		return fieldAt(f.SelectionSet, path[1:])
	}
	return nil
}

// rewriteFieldAt returns a new selection set where the field at path is
// replaced by fn's result; returning nil from fn removes the field. The set is
// returned unchanged when the path does not resolve.
func rewriteFieldAt(set language.SelectionSet, path []string, fn func(*language.Field) *language.Field) language.SelectionSet {
	if len(path) == 0 {
		return set
	}
	out := make(language.SelectionSet, 0, len(set))
	for _, sel := range set {
		f, ok := sel.(*language.Field)
		if !ok || f.Name != path[0] {
			out = append(out, sel)
			continue
		}
		if len(path) == 1 {
			if replaced := fn(f); replaced != nil {
				out = append(out, replaced)
			}
			continue
		}
		copied := *f
		copied.SelectionSet = rewriteFieldAt(f.SelectionSet, path[1:], fn)
		out = append(out, &copied)
	}
	return out
}

// dataAt walks response data along a path of response keys.
func dataAt(data any, path []string) (any, bool) {
	cur := data
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setDataAt writes v at path inside data, creating intermediate maps.
func setDataAt(data map[string]any, path []string, v any) {
	for _, key := range path[:len(path)-1] {
		child, ok := data[key].(map[string]any)
		if !ok {
			child = map[string]any{}
			data[key] = child
		}
		data = child
	}
	data[path[len(path)-1]] = v
}

// deleteDataAt removes the entry at path, leaving parents in place.
func deleteDataAt(data map[string]any, path []string) {
	for _, key := range path[:len(path)-1] {
		child, ok := data[key].(map[string]any)
		if !ok {
			return
		}
		data = child
	}
	delete(data, path[len(path)-1])
}

func pathHasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}
