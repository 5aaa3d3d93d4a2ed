package delegate

import (
	executor "github.com/hanpama/stitch/internal/executor"
)

// ErrorCarrier pairs a delegated result value with the located errors the
// target reported under it, paths kept relative to the value. It satisfies
// executor.Annotated so it flows through value completion intact until a
// merged-field resolver consumes it. All methods tolerate a nil receiver:
// typed-nil carriers still satisfy the interface.
type ErrorCarrier struct {
	Value  any
	Errors []executor.GraphQLError
}

var (
	_ executor.Annotated     = (*ErrorCarrier)(nil)
	_ executor.ErrorReporter = (*ErrorCarrier)(nil)
)

// GraphQLValue returns the raw value being carried.
func (c *ErrorCarrier) GraphQLValue() any {
	if c == nil {
		return nil
	}
	return c.Value
}

// GraphQLElement scopes the carrier to one list element: errors whose path
// starts with the element index follow the element with the index stripped.
func (c *ErrorCarrier) GraphQLElement(i int) any {
	if c == nil {
		return nil
	}
	items, ok := c.Value.([]any)
	if !ok || i < 0 || i >= len(items) {
		return nil
	}
	var scoped []executor.GraphQLError
	for _, e := range c.Errors {
		if len(e.Path) == 0 {
			continue
		}
		if idx, ok := e.Path[0].(int); ok && idx == i {
			shifted := e
			shifted.Path = e.Path[1:]
			scoped = append(scoped, shifted)
		}
	}
	if len(scoped) == 0 {
		return items[i]
	}
	return &ErrorCarrier{Value: items[i], Errors: scoped}
}

// GraphQLOwnErrors returns the errors located at the carried value itself.
// The executor records them at the value's response path during completion.
func (c *ErrorCarrier) GraphQLOwnErrors() []executor.GraphQLError {
	if c == nil {
		return nil
	}
	var own []executor.GraphQLError
	for _, e := range c.Errors {
		if len(e.Path) == 0 {
			own = append(own, e)
		}
	}
	return own
}

// Resolve produces the child value for one response key. An error located
// exactly at the key is re-thrown (the executor relocates it to the caller's
// coordinates); deeper errors under the key travel on in a child carrier.
// When several errors sit exactly at the key, the first reported wins.
func (c *ErrorCarrier) Resolve(key string) (any, error) {
	if c == nil {
		return nil, nil
	}
	var deeper []executor.GraphQLError
	for _, e := range c.Errors {
		if len(e.Path) == 0 {
			continue
		}
		name, ok := e.Path[0].(string)
		if !ok || name != key {
			continue
		}
		if len(e.Path) == 1 {
			return nil, e
		}
		shifted := e
		shifted.Path = e.Path[1:]
		deeper = append(deeper, shifted)
	}
	var raw any
	if m, ok := c.Value.(map[string]any); ok {
		raw = m[key]
	}
	if len(deeper) == 0 {
		return raw, nil
	}
	return &ErrorCarrier{Value: raw, Errors: deeper}, nil
}

// unpack extracts the delegated root field's value from the target's result.
// Errors under the root field attach to the value with relative paths. Errors
// belonging to the root itself — located exactly at the root field, pathless
// execution errors, or errors keyed off a field the delegated document never
// asked for — re-throw when the root came back null and otherwise ride along
// with an empty path, which completion records at the delegating field.
// Request errors (no data at all) fail the delegation outright.
func unpack(res *executor.ExecutionResult, key string) (any, error) {
	data, _ := res.Data.(map[string]any)
	if data == nil {
		if len(res.Errors) > 0 {
			return nil, res.Errors[0]
		}
		return nil, nil
	}
	value := data[key]

	var own []executor.GraphQLError
	var relative []executor.GraphQLError
	for _, e := range res.Errors {
		if len(e.Path) == 0 {
			own = append(own, e)
			continue
		}
		name, ok := e.Path[0].(string)
		if !ok || name != key || len(e.Path) == 1 {
			scoped := e
			scoped.Path = nil
			own = append(own, scoped)
			continue
		}
		shifted := e
		shifted.Path = e.Path[1:]
		relative = append(relative, shifted)
	}

	if value == nil && len(own) > 0 {
		return nil, own[0]
	}
	if len(own) == 0 && len(relative) == 0 {
		return value, nil
	}
	return &ErrorCarrier{Value: value, Errors: append(own, relative...)}, nil
}
