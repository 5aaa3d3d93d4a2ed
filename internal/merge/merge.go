// Package merge stitches several subschemas into one executable gateway
// schema. Types sharing a name merge field by field with the later subschema
// winning on redefinition; root fields become proxies that delegate to the
// subschema that contributed them; every other field gets the merged-field
// resolver, which understands the error carriers the delegation layer
// produces. Extension type definitions and resolver maps graft computed
// fields on top of the delegated data.
package merge

import (
	"context"
	"fmt"

	delegate "github.com/hanpama/stitch/internal/delegate"
	executor "github.com/hanpama/stitch/internal/executor"
	language "github.com/hanpama/stitch/internal/language"
	schema "github.com/hanpama/stitch/internal/schema"
	transform "github.com/hanpama/stitch/internal/transform"
)

// Subschema is one stitching input: a schema, the executor that answers for
// it, and optional extensions layered on top.
type Subschema struct {
	// Schema is the subschema's registry as the gateway delegates to it.
	Schema *schema.Schema
	// Executor answers delegated requests (delegate.Local for in-process
	// schemas, remote.Executor for HTTP endpoints).
	Executor delegate.Executor
	// Transforms run on every request delegated to this subschema, before
	// the terminal FilterToSchema.
	Transforms []transform.Transform
	// TypeDefs holds extension SDL ("extend type ..." plus any new types)
	// merged into the gateway schema but never delegated.
	TypeDefs string
	// Resolvers overrides field resolution for fields this entry
	// contributes, keyed "Type.field".
	Resolvers executor.ResolverMap
}

// Stitched is the merge product: the gateway registry and its resolver map.
type Stitched struct {
	Schema    *schema.Schema
	Resolvers executor.ResolverMap
}

// NewExecutor builds the gateway executor over the stitched schema.
func (s *Stitched) NewExecutor(opts ...executor.Option) *executor.Executor {
	return executor.NewExecutor(s.Schema, s.Resolvers, opts...)
}

type Option func(*config)

type config struct {
	resolvers executor.ResolverMap
}

// WithResolvers overrides resolvers on the stitched schema after all
// subschema contributions, keyed "Type.field".
func WithResolvers(rm executor.ResolverMap) Option {
	return func(c *config) { c.resolvers = rm }
}

var rootNames = map[language.Operation]string{
	language.Query:        "Query",
	language.Mutation:     "Mutation",
	language.Subscription: "Subscription",
}

// Merge stitches the subschemas in order into one executable schema.
func Merge(subschemas []Subschema, opts ...Option) (*Stitched, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	if len(subschemas) == 0 {
		return nil, fmt.Errorf("merge: no subschemas given")
	}

	merged := schema.NewSchema("")
	resolvers := executor.ResolverMap{}

	for i := range subschemas {
		sub := &subschemas[i]
		if sub.Schema == nil {
			return nil, fmt.Errorf("merge: subschema %d has no schema", i)
		}
		rootOf := map[string]language.Operation{}
		if name := sub.Schema.QueryType; name != "" {
			rootOf[name] = language.Query
		}
		if name := sub.Schema.MutationType; name != "" {
			rootOf[name] = language.Mutation
		}
		if name := sub.Schema.SubscriptionType; name != "" {
			rootOf[name] = language.Subscription
		}

		for name, typ := range sub.Schema.Types {
			if op, isRoot := rootOf[name]; isRoot {
				mergeRootType(merged, resolvers, sub, op, typ)
				continue
			}
			if isBuiltinScalar(name) {
				// Kept by identity so SDL rendering can elide them.
				if merged.Types[name] == nil {
					merged.AddType(typ)
				}
				continue
			}
			mergeType(merged, name, typ)
		}
		for _, d := range sub.Schema.Directives {
			if d.Name == "include" || d.Name == "skip" {
				if merged.Directives[d.Name] == nil {
					merged.AddDirective(d)
				}
				continue
			}
			merged.AddDirective(d.Clone())
		}

		if sub.TypeDefs != "" {
			if err := applyTypeDefs(merged, sub.TypeDefs); err != nil {
				return nil, fmt.Errorf("merge: subschema %d typedefs: %w", i, err)
			}
		}
	}

	// Every non-root object field resolves through the merged-field resolver
	// unless a subschema or the caller registered something specific.
	for _, typ := range merged.Types {
		if typ.Kind != schema.TypeKindObject || isRootName(merged, typ.Name) {
			continue
		}
		for _, f := range typ.Fields {
			key := typ.Name + "." + f.Name
			if _, taken := resolvers[key]; !taken {
				resolvers[key] = mergedFieldResolver
			}
		}
	}

	for i := range subschemas {
		for key, r := range subschemas[i].Resolvers {
			resolvers[key] = r
		}
	}
	for key, r := range cfg.resolvers {
		resolvers[key] = r
	}

	return &Stitched{Schema: merged, Resolvers: resolvers}, nil
}

func isRootName(s *schema.Schema, name string) bool {
	return name == s.QueryType || name == s.MutationType || name == s.SubscriptionType
}

// mergeRootType folds a subschema's root fields into the canonical gateway
// root for that operation kind, registering a delegating proxy per field.
func mergeRootType(merged *schema.Schema, resolvers executor.ResolverMap, sub *Subschema, op language.Operation, typ *schema.Type) {
	rootName := rootNames[op]
	root := merged.Types[rootName]
	if root == nil {
		root = schema.NewType(rootName, schema.TypeKindObject, typ.Description)
		merged.AddType(root)
		switch op {
		case language.Query:
			merged.SetQueryType(rootName)
		case language.Mutation:
			merged.SetMutationType(rootName)
		case language.Subscription:
			merged.SetSubscriptionType(rootName)
		}
	}
	for _, f := range typ.Fields {
		upsertField(root, f.Clone())
		resolvers[rootName+"."+f.Name] = proxyResolver(sub)
	}
}

// mergeType adds typ to the registry or merges it into the same-named type:
// fields, enum values and input fields merge by name with the newcomer
// winning; interface and possible-type references union.
func mergeType(merged *schema.Schema, name string, typ *schema.Type) {
	existing := merged.Types[name]
	if existing == nil {
		merged.AddType(typ.Clone())
		return
	}
	for _, f := range typ.Fields {
		upsertField(existing, f.Clone())
	}
	for _, iface := range typ.Interfaces {
		if !containsName(existing.Interfaces, iface) {
			existing.Interfaces = append(existing.Interfaces, iface)
		}
	}
	for _, possible := range typ.PossibleTypes {
		if !containsName(existing.PossibleTypes, possible) {
			existing.PossibleTypes = append(existing.PossibleTypes, possible)
		}
	}
	for _, v := range typ.EnumValues {
		replaced := false
		for i, prior := range existing.EnumValues {
			if prior.Name == v.Name {
				copied := *v
				existing.EnumValues[i] = &copied
				replaced = true
				break
			}
		}
		if !replaced {
			copied := *v
			existing.EnumValues = append(existing.EnumValues, &copied)
		}
	}
	for _, v := range typ.InputFields {
		replaced := false
		for i, prior := range existing.InputFields {
			if prior.Name == v.Name {
				existing.InputFields[i] = v.Clone()
				replaced = true
				break
			}
		}
		if !replaced {
			existing.InputFields = append(existing.InputFields, v.Clone())
		}
	}
}

func upsertField(typ *schema.Type, f *schema.Field) {
	for i, prior := range typ.Fields {
		if prior.Name == f.Name {
			typ.Fields[i] = f
			return
		}
	}
	typ.AddField(f)
}

func isBuiltinScalar(name string) bool {
	switch name {
	case "Int", "Float", "String", "Boolean", "ID":
		return true
	}
	return false
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// applyTypeDefs grafts extension SDL onto the merged registry: "extend type"
// blocks add fields to existing types, plain definitions add new types.
func applyTypeDefs(merged *schema.Schema, sdl string) error {
	doc, err := language.ParseSchema("typedefs.graphql", sdl)
	if err != nil {
		return err
	}
	for _, ext := range doc.Extensions {
		base := merged.Types[ext.Name]
		if base == nil {
			return fmt.Errorf("extend of unknown type %s", ext.Name)
		}
		for _, f := range ext.Fields {
			upsertField(base, schema.FieldFromAST(f))
		}
		for _, iface := range ext.Interfaces {
			if !containsName(base.Interfaces, iface) {
				base.Interfaces = append(base.Interfaces, iface)
			}
		}
	}
	for _, def := range doc.Definitions {
		mergeType(merged, def.Name, schema.DefinitionFromAST(def))
	}
	return nil
}

// proxyResolver delegates a gateway root field to the subschema that
// contributed it, carrying the in-flight selection and coerced arguments.
func proxyResolver(sub *Subschema) executor.Resolver {
	return func(ctx context.Context, source any, args map[string]any, info executor.ResolveInfo) (any, error) {
		return delegate.Delegate(ctx, delegate.Params{
			Target:     sub.Schema,
			Executor:   sub.Executor,
			Operation:  info.Operation,
			FieldName:  info.FieldName,
			Args:       args,
			Info:       info,
			Transforms: sub.Transforms,
		})
	}
}

// mergedFieldResolver walks delegated data, re-throwing errors located exactly
// at the requested key and passing deeper ones down inside child carriers.
func mergedFieldResolver(_ context.Context, source any, _ map[string]any, info executor.ResolveInfo) (any, error) {
	key := executor.ResponseKey(info.Field)
	switch src := source.(type) {
	case *delegate.ErrorCarrier:
		return src.Resolve(key)
	case map[string]any:
		return src[key], nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("cannot resolve field %q on value of type %T", key, source)
	}
}
