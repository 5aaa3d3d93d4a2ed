// Package delegate forwards the resolution of one gateway field to another
// schema. It builds a minimal standalone operation from the caller's in-flight
// selection, runs it through the configured transform pipeline (always
// terminated by FilterToSchema), executes it against the target, and inverts
// the pipeline over the result. Partial errors come back attached to the
// returned value as an ErrorCarrier instead of failing the whole field.
package delegate

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	eventbus "github.com/hanpama/stitch/internal/eventbus"
	events "github.com/hanpama/stitch/internal/events"
	executor "github.com/hanpama/stitch/internal/executor"
	language "github.com/hanpama/stitch/internal/language"
	schema "github.com/hanpama/stitch/internal/schema"
	transform "github.com/hanpama/stitch/internal/transform"
)

// Executor runs a transformed request against one subschema. Implementations
// exist for in-process schemas (Local) and remote HTTP endpoints.
type Executor interface {
	Execute(ctx context.Context, req *transform.Request) *executor.ExecutionResult
}

// Local adapts an in-process executor to the delegation Executor interface.
type Local struct {
	Exec *executor.Executor
}

func (l Local) Execute(ctx context.Context, req *transform.Request) *executor.ExecutionResult {
	return l.Exec.ExecuteRequest(ctx, req.Document, "", req.Variables, nil)
}

// Params configures one delegated execution.
type Params struct {
	// Target is the schema the request is delegated to.
	Target *schema.Schema
	// Executor runs the transformed request against Target.
	Executor Executor
	// Operation is the operation kind of the delegated request.
	Operation language.Operation
	// FieldName is the root field to request on Target.
	FieldName string
	// Args are the coerced argument values for the root field; they are
	// inlined as literals on the delegated request.
	Args map[string]any
	// Info is the caller's resolution context; its in-flight selection set,
	// fragments and variables seed the delegated document.
	Info executor.ResolveInfo
	// Transforms run before the terminal FilterToSchema.
	Transforms []transform.Transform
}

// Delegate builds, transforms and executes a delegated request, returning the
// value for the delegating field. Transform failures are returned as errors;
// execution-time errors from the target are folded into the returned value
// (an ErrorCarrier) so sibling fields keep resolving.
func Delegate(ctx context.Context, p Params) (any, error) {
	req := buildRequest(p)

	pipeline := make(transform.Pipeline, 0, len(p.Transforms)+1)
	pipeline = append(pipeline, p.Transforms...)
	pipeline = append(pipeline, transform.NewFilterToSchema(p.Target))

	req, err := pipeline.Request(req)
	if err != nil {
		return nil, err
	}

	eventbus.Publish(ctx, events.DelegationStart{
		FieldName:     p.FieldName,
		OperationType: string(p.Operation),
	})
	start := time.Now()

	res := p.Executor.Execute(ctx, req)
	res, err = pipeline.Response(res, req)

	finish := events.DelegationFinish{
		FieldName:     p.FieldName,
		OperationType: string(p.Operation),
		Duration:      time.Since(start),
	}
	if res != nil {
		for _, e := range res.Errors {
			finish.Errors = append(finish.Errors, e)
		}
	}
	eventbus.Publish(ctx, finish)

	if err != nil {
		return nil, err
	}
	return unpack(res, p.FieldName)
}

// buildRequest assembles the minimal standalone document: one operation whose
// sole root field carries the caller's in-flight selection, plus every
// fragment transitively reachable from it. The terminal FilterToSchema prunes
// whatever the target cannot serve, including unused variable definitions.
func buildRequest(p Params) *transform.Request {
	var sel language.SelectionSet
	if len(p.Info.FieldGroup) > 0 {
		for _, f := range p.Info.FieldGroup {
			sel = append(sel, f.SelectionSet...)
		}
	} else if p.Info.Field != nil {
		sel = p.Info.Field.SelectionSet
	}

	rootField := &language.Field{
		Alias:        p.FieldName,
		Name:         p.FieldName,
		Arguments:    argumentsFromValues(p.Args),
		SelectionSet: sel,
	}
	op := &language.OperationDefinition{
		Operation:           p.Operation,
		VariableDefinitions: p.Info.VariableDefinitions,
		SelectionSet:        language.SelectionSet{rootField},
	}
	doc := &language.QueryDocument{
		Operations: language.OperationList{op},
		Fragments:  reachableFragments(sel, p.Info.Fragments),
	}
	return &transform.Request{
		Document:  doc,
		Variables: p.Info.VariableValues,
		Operation: p.Operation,
	}
}

// reachableFragments keeps the fragments transitively spread from sel, in
// their original document order.
func reachableFragments(sel language.SelectionSet, all language.FragmentDefinitionList) language.FragmentDefinitionList {
	byName := map[string]*language.FragmentDefinition{}
	for _, frag := range all {
		byName[frag.Name] = frag
	}
	reached := map[string]bool{}
	var walk func(set language.SelectionSet)
	walk = func(set language.SelectionSet) {
		for _, s := range set {
			switch node := s.(type) {
			case *language.Field:
				walk(node.SelectionSet)
			case *language.InlineFragment:
				walk(node.SelectionSet)
			case *language.FragmentSpread:
				if reached[node.Name] {
					continue
				}
				reached[node.Name] = true
				if frag := byName[node.Name]; frag != nil {
					walk(frag.SelectionSet)
				}
			}
		}
	}
	walk(sel)

	var out language.FragmentDefinitionList
	for _, frag := range all {
		if reached[frag.Name] {
			out = append(out, frag)
		}
	}
	return out
}

// argumentsFromValues inlines coerced argument values as literal AST values,
// in deterministic name order.
func argumentsFromValues(args map[string]any) language.ArgumentList {
	if len(args) == 0 {
		return nil
	}
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(language.ArgumentList, 0, len(names))
	for _, name := range names {
		out = append(out, &language.Argument{Name: name, Value: valueToAST(args[name])})
	}
	return out
}

func valueToAST(v any) *language.Value {
	switch val := v.(type) {
	case nil:
		return &language.Value{Kind: language.NullValue, Raw: "null"}
	case bool:
		return &language.Value{Kind: language.BooleanValue, Raw: strconv.FormatBool(val)}
	case int:
		return &language.Value{Kind: language.IntValue, Raw: strconv.Itoa(val)}
	case int32:
		return &language.Value{Kind: language.IntValue, Raw: strconv.FormatInt(int64(val), 10)}
	case int64:
		return &language.Value{Kind: language.IntValue, Raw: strconv.FormatInt(val, 10)}
	case float64:
		return &language.Value{Kind: language.FloatValue, Raw: strconv.FormatFloat(val, 'g', -1, 64)}
	case string:
		return &language.Value{Kind: language.StringValue, Raw: val}
	case []any:
		node := &language.Value{Kind: language.ListValue}
		for _, item := range val {
			node.Children = append(node.Children, &language.ChildValue{Value: valueToAST(item)})
		}
		return node
	case map[string]any:
		node := &language.Value{Kind: language.ObjectValue}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			node.Children = append(node.Children, &language.ChildValue{Name: k, Value: valueToAST(val[k])})
		}
		return node
	default:
		return &language.Value{Kind: language.StringValue, Raw: fmt.Sprintf("%v", val)}
	}
}
