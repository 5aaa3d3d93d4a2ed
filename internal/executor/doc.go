// Package executor implements a resolver-map driven GraphQL executor used both
// as the gateway's host engine over the stitched schema and as the local
// execution collaborator for in-process subschemas.
//
// # Execution Model
//
// Execution is a depth-first recursion over the grouped selection set:
//
//  1. The operation is chosen (by name or by uniqueness when unnamed) and
//     variables are coerced against its variable definitions. Coercion errors
//     stop execution before any field resolves.
//  2. collectFields groups the selection set by response key, expanding
//     fragment spreads and inline fragments whose type condition passes the
//     implements-or-equals check, and honoring @skip/@include.
//  3. Each field group resolves through the ResolverMap entry for
//     "ParentType.field", falling back to map-key lookup on the source value.
//     The resolver receives a ResolveInfo carrying the field node, path,
//     fragments and variables, which is everything a resolver needs to
//     delegate the in-flight selection to another schema.
//  4. completeValue completes the result per the GraphQL specification
//     (Non-Null, List, Leaf, Object, Abstract) with index-aware located error
//     paths and Non-Null null-propagation to the nearest nullable ancestor.
//
// # Errors and Partial Success
//
// Resolver failures become located errors (message + response path) and null
// the field; sibling fields keep resolving. A resolver may return a
// GraphQLError value as its error to preserve extensions while the executor
// re-locates the path to the caller's coordinates.
//
// # Annotated values
//
// Values implementing Annotated flow through completion with their annotation
// intact: the executor consults the carried raw value for null/list/leaf
// decisions but hands the annotated value itself to child resolvers. The
// delegation layer uses this to thread path-keyed partial errors from a
// subschema response into the merged resolution tree.
package executor
