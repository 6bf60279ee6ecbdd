package sync

import (
	"context"
	"strings"

	"github.com/motorlot/lotsync/internal/utils/slug"
	"github.com/motorlot/lotsync/pkg/errors"
	"github.com/motorlot/lotsync/pkg/logging"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

// Resolver turns taxonomy term names into term IDs, creating terms that do
// not exist yet. The slug is the identity: find-by-slug always wins over
// create, so repeated runs with the same names never produce duplicates.
type Resolver struct {
	api API
}

// NewResolver builds a Resolver over an API client.
func NewResolver(api API) *Resolver {
	return &Resolver{api: api}
}

// Resolve returns the term ID for name in taxonomy, creating the term when
// no existing term matches the normalized slug. Parent is optional; zero
// means top-level. An empty name is invalid input, not a lookup miss.
func (r *Resolver) Resolve(ctx context.Context, taxonomy, name string, parent int) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.NewResolutionError(taxonomy, name, errors.ErrInvalidInput)
	}

	// Slashes in model names ("CX-30 i/Sport") would otherwise split the
	// slug lookup path.
	termSlug := slug.Make(strings.ReplaceAll(name, "/", "-"))
	if termSlug == "" {
		return 0, errors.NewResolutionError(taxonomy, name, errors.ErrInvalidInput)
	}

	existing, err := r.api.FindTermBySlug(ctx, taxonomy, termSlug)
	if err != nil {
		return 0, errors.NewResolutionError(taxonomy, name, err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	created, err := r.api.CreateTerm(ctx, taxonomy, wordpress.Term{
		Name:   name,
		Slug:   termSlug,
		Parent: parent,
	})
	if err != nil {
		return 0, errors.NewResolutionError(taxonomy, name, err)
	}
	logging.Ctx(ctx).Info().
		Str("taxonomy", taxonomy).
		Str("slug", termSlug).
		Int("term_id", created.ID).
		Msg("created taxonomy term")
	return created.ID, nil
}

// ResolveOptional resolves a term that is not required for the record to
// sync. Failures are logged and reported as 0 so the caller simply omits
// the term.
func (r *Resolver) ResolveOptional(ctx context.Context, taxonomy, name string, parent int) int {
	if strings.TrimSpace(name) == "" {
		return 0
	}
	id, err := r.Resolve(ctx, taxonomy, name, parent)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("taxonomy", taxonomy).
			Str("name", name).
			Msg("optional term unresolved, continuing without it")
		return 0
	}
	return id
}
