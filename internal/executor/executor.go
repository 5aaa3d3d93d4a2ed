package executor

import (
	"context"
	"fmt"
	"reflect"

	language "github.com/hanpama/stitch/internal/language"
	schema "github.com/hanpama/stitch/internal/schema"
)

type Path []PathElement

type PathElement any

// Annotated lets a resolved value carry delegated execution state through
// value completion without the executor knowing its concrete type. The
// completion logic consults the carried raw value for null/list/leaf decisions
// but hands the annotated value itself to child resolvers, so annotations
// survive until the resolver that knows how to consume them.
type Annotated interface {
	// GraphQLValue returns the raw value being carried.
	GraphQLValue() any
	// GraphQLElement returns the carried value for one list element,
	// preserving any annotation scoped to that element.
	GraphQLElement(i int) any
}

// ErrorReporter is an optional extension of Annotated for values that carry
// errors located exactly at the node they represent. Completion records them
// at the node's response path; errors scoped deeper stay inside the value and
// surface as resolution descends.
type ErrorReporter interface {
	// GraphQLOwnErrors returns the errors located at the carried value
	// itself (empty relative path).
	GraphQLOwnErrors() []GraphQLError
}

// executionState holds the state during one request execution
type executionState struct {
	executor       *Executor
	document       *language.QueryDocument
	operation      *language.OperationDefinition
	variableValues map[string]any
	context        context.Context
	errors         []GraphQLError
}

// Executor drives resolver-map execution of query documents against a schema.
// It is stateless across requests and safe for concurrent use.
type Executor struct {
	schema       *schema.Schema
	resolvers    ResolverMap
	typeResolver TypeResolver
}

type Option func(*Executor)

// WithTypeResolver overrides concrete-type resolution for abstract types.
func WithTypeResolver(tr TypeResolver) Option {
	return func(e *Executor) { e.typeResolver = tr }
}

func NewExecutor(sch *schema.Schema, resolvers ResolverMap, opts ...Option) *Executor {
	e := &Executor{schema: sch, resolvers: resolvers, typeResolver: defaultTypeResolver}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Schema returns the registry this executor serves.
func (e *Executor) Schema() *schema.Schema { return e.schema }

func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	rootValue any,
) *ExecutionResult {
	operation := getOperation(document, operationName)
	if operation == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	case language.Subscription:
		rootType = e.schema.GetSubscriptionType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}

	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	state := &executionState{
		executor:       e,
		document:       document,
		operation:      operation,
		variableValues: coercedVariableValues,
		context:        ctx,
		errors:         []GraphQLError{},
	}

	responseRoot := executeSelectionSet(state, rootType, operation.SelectionSet, rootValue, Path{})
	return &ExecutionResult{Data: responseRoot, Errors: state.errors}
}

// executeSelectionSet resolves one grouped selection set depth-first.
// A non-null violation in a child nulls the whole set (bubbles to the parent),
// except at the root where the offending entry alone becomes null.
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path) map[string]any {
	groupedFields := collectFields(state, objectType, selectionSet)
	resultMap := make(map[string]any)

	for _, collectedField := range groupedFields.orderedFields() {
		responseName := collectedField.ResponseName
		fields := collectedField.Fields
		fieldPath := appendPath(path, responseName)

		fieldResult := executeFieldGroup(state, objectType, objectValue, fields, fieldPath)

		if fields[0].Name == "__typename" {
			resultMap[responseName] = fieldResult
			continue
		}

		fieldDef := state.executor.schema.GetField(objectType, fields[0].Name)
		if fieldDef == nil {
			// Unknown field – error was already recorded in executeFieldGroup
			continue
		}

		if schema.IsNonNull(fieldDef.Type) && isNullish(fieldResult) {
			if len(path) > 0 {
				return nil
			}
			resultMap[responseName] = nil
			continue
		}

		// Coerce typed-nil to interface-nil
		if isNullish(fieldResult) {
			resultMap[responseName] = nil
		} else {
			resultMap[responseName] = fieldResult
		}
	}

	return resultMap
}

func executeFieldGroup(state *executionState, objectType *schema.Type, objectValue any, fields []*language.Field, path Path) any {
	field := fields[0]
	fieldName := field.Name

	if fieldName == "__typename" {
		return objectType.Name
	}

	fieldDef := state.executor.schema.GetField(objectType, fieldName)
	if fieldDef == nil {
		state.addError(GraphQLError{
			Message: fmt.Sprintf("Cannot query field '%s' on type '%s'", fieldName, objectType.Name),
			Path:    path,
		})
		return nil
	}

	argumentValues := coerceArgumentValues(fieldDef, field.Arguments, state.variableValues, state, path)

	info := ResolveInfo{
		FieldName:           fieldName,
		Field:               field,
		FieldGroup:          fields,
		Path:                path,
		ParentType:          objectType,
		ReturnType:          fieldDef.Type,
		Operation:           state.operation.Operation,
		VariableDefinitions: state.operation.VariableDefinitions,
		Fragments:           state.document.Fragments,
		VariableValues:      state.variableValues,
		Schema:              state.executor.schema,
	}

	resolver := state.executor.resolvers.Resolver(objectType.Name, fieldName)
	if resolver == nil {
		resolver = defaultFieldResolver
	}

	resolvedValue, err := resolver(state.context, objectValue, argumentValues, info)
	if err != nil {
		state.addResolverError(err, path)
		return nil
	}
	state.addCarriedErrors(resolvedValue, path)
	return completeValue(state, fieldDef.Type, fields, resolvedValue, path)
}

// completeValue completes a resolved value against its declared type
func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	raw := unwrapAnnotated(result)

	if schema.IsNonNull(fieldType) {
		if isNullish(raw) {
			if !state.hasErrorAtPath(path) {
				state.addError(GraphQLError{Message: fmt.Sprintf("Cannot return null for non-nullable field %s", pathToString(path)), Path: path})
			}
			return nil
		}
		inner := schema.Unwrap(fieldType)
		completed := completeValue(state, inner, fields, result, path)
		if isNullish(completed) {
			// Error already recorded at original path; propagate only
			return nil
		}
		return completed
	}

	if isNullish(raw) {
		return nil
	}

	if schema.IsList(fieldType) {
		return completeListValue(state, fieldType, fields, result, path)
	}
	namedType := schema.GetNamedType(fieldType)
	typeObj := state.executor.schema.Types[namedType]
	if typeObj == nil {
		state.addError(GraphQLError{Message: fmt.Sprintf("Unknown type: %s", namedType), Path: path})
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		return raw
	case schema.TypeKindObject:
		return completeObjectValue(state, typeObj, fields, result, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return completeAbstractValue(state, namedType, fields, result, path)
	default:
		state.addError(GraphQLError{Message: fmt.Sprintf("Cannot complete value of unexpected type: %s", typeObj.Kind), Path: path})
		return nil
	}
}

// completeListValue completes a list value element-wise, keeping element-scoped
// annotations alive through Annotated carriers.
func completeListValue(state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	ann, _ := result.(Annotated)
	raw := unwrapAnnotated(result)

	var items []any
	if direct, ok := raw.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice {
			state.addError(GraphQLError{Message: fmt.Sprintf("Expected list value, got %T", raw), Path: path})
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, len(items))
	for i, item := range items {
		if ann != nil {
			item = ann.GraphQLElement(i)
		}
		p := appendPath(path, i)
		state.addCarriedErrors(item, p)
		v := completeValue(state, inner, fields, item, p)
		if schema.IsNonNull(inner) && isNullish(v) {
			// Propagate null to the list field; error already recorded by inner completion
			return nil
		}
		completed[i] = v
	}
	return completed
}

func completeObjectValue(state *executionState, objectType *schema.Type, fields []*language.Field, result any, path Path) any {
	sub := mergeSelectionSets(fields)
	return executeSelectionSet(state, objectType, sub, result, path)
}

func completeAbstractValue(state *executionState, abstractTypeName string, fields []*language.Field, result any, path Path) any {
	typeName, err := state.executor.typeResolver(abstractTypeName, unwrapAnnotated(result))
	if err != nil {
		state.addError(GraphQLError{Message: err.Error(), Path: path})
		return nil
	}
	objectType := state.executor.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		state.addError(GraphQLError{Message: fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstractTypeName, typeName), Path: path})
		return nil
	}
	return completeObjectValue(state, objectType, fields, result, path)
}

func pathToString(path Path) string {
	result := ""
	for i, elem := range path {
		if i > 0 {
			result += "."
		}
		switch v := elem.(type) {
		case string:
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		for _, op := range document.Operations {
			return op
		}
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op
		}
	}
	return nil
}

func (state *executionState) addError(err GraphQLError) {
	state.errors = append(state.errors, err)
}

// addResolverError records a resolver failure as a located error at path.
// GraphQLError values thrown by resolvers keep their message and extensions but
// are re-located to the caller's coordinates.
func (state *executionState) addResolverError(err error, path Path) {
	if ge, ok := err.(GraphQLError); ok {
		state.addError(GraphQLError{Message: ge.Message, Path: path, Extensions: ge.Extensions})
		return
	}
	state.addError(GraphQLError{Message: err.Error(), Path: path})
}

// addCarriedErrors records the errors an annotated value carries for the node
// itself, located at path. Deeper errors stay inside the value.
func (state *executionState) addCarriedErrors(v any, path Path) {
	rep, ok := v.(ErrorReporter)
	if !ok {
		return
	}
	for _, e := range rep.GraphQLOwnErrors() {
		state.addError(GraphQLError{Message: e.Message, Path: path, Extensions: e.Extensions})
	}
}

// hasErrorAtPath reports whether an error with the given path already exists.
func (state *executionState) hasErrorAtPath(path Path) bool {
	for _, err := range state.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

func unwrapAnnotated(v any) any {
	if a, ok := v.(Annotated); ok {
		return a.GraphQLValue()
	}
	return v
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
