package persistence

import (
	"context"

	"inklings-backend/application/ports"
	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
)

// Resolver dispatches a node reference to the repository that stores its
// kind. It is the storage-side implementation of the domain's NodeResolver
// and works for any repository bundle.
type Resolver struct {
	repos ports.Repositories
}

// NewResolver creates a resolver over a repository bundle
func NewResolver(repos ports.Repositories) *Resolver {
	return &Resolver{repos: repos}
}

// Resolve loads the concrete node behind a reference
func (r *Resolver) Resolve(ctx context.Context, ref valueobjects.NodeReference) (entities.Node, error) {
	switch ref.Kind() {
	case valueobjects.KindLink:
		link, err := r.repos.Links().Get(ctx, ref.ID())
		if err != nil {
			return nil, err
		}
		return link, nil
	case valueobjects.KindTag:
		tag, err := r.repos.Tags().Get(ctx, ref.ID())
		if err != nil {
			return nil, err
		}
		return tag, nil
	default:
		return r.repos.Nodes().Get(ctx, ref)
	}
}
