package integration

import "context"

// EntityResolver reports whether the local entity identified by posID still
// exists. One resolver is registered per entity type; mapping validation
// dispatches through the registry instead of switching on the type.
type EntityResolver func(ctx context.Context, posID string) (bool, error)

// EntityResolverRegistry maps entity types to their existence checks.
// Registration happens once at wiring time; the registry is read-only
// afterwards and safe for concurrent use.
type EntityResolverRegistry struct {
	resolvers map[EntityType]EntityResolver
}

// NewEntityResolverRegistry creates an empty registry
func NewEntityResolverRegistry() *EntityResolverRegistry {
	return &EntityResolverRegistry{
		resolvers: make(map[EntityType]EntityResolver),
	}
}

// Register binds a resolver to an entity type, replacing any previous binding
func (r *EntityResolverRegistry) Register(entityType EntityType, resolver EntityResolver) {
	r.resolvers[entityType] = resolver
}

// Resolve runs the resolver registered for the entity type.
// Returns ErrUnresolvableEntityType when no resolver is registered.
func (r *EntityResolverRegistry) Resolve(ctx context.Context, entityType EntityType, posID string) (bool, error) {
	resolver, ok := r.resolvers[entityType]
	if !ok {
		return false, ErrUnresolvableEntityType
	}
	return resolver(ctx, posID)
}
