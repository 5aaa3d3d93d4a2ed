// Package transform implements reversible request/response rewrites used when
// delegating GraphQL execution to another schema.
//
// A Transform rewrites a Request on the way to the target and inverts the
// rewrite on the Response coming back. A Pipeline composes transforms like
// middleware: requests fold left-to-right, responses right-to-left, so the
// transform that touched the request last sees the response first.
//
// FilterToSchema is the terminal transform of every delegation pipeline: it
// prunes whatever the target schema cannot answer, so earlier transforms are
// free to leave foreign selections behind. The schema-projection transforms
// (RenameTypes, FilterTypes) additionally expose the projected registry via
// their Schema method for the gateway to publish.
package transform
