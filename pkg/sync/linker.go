package sync

import (
	"context"

	"github.com/motorlot/lotsync/pkg/logging"
	"github.com/motorlot/lotsync/pkg/schema"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

// Linker asserts the relation edges around a post. Every edge is sent with
// replace semantics, so re-asserting after a no-op update is harmless; the
// relation state is simply restated.
type Linker struct {
	api     API
	profile *schema.Profile
}

// NewLinker builds a Linker for the given site profile.
func NewLinker(api API, profile *schema.Profile) *Linker {
	return &Linker{api: api, profile: profile}
}

// Link asserts the edges for a post: make->model, post->make, post->model, and
// sucursal->post. Edges with a missing endpoint are skipped with a log line.
// Each edge is independent; one failure never blocks the rest, and none of
// them fails the record.
func (l *Linker) Link(ctx context.Context, postID, makeID, modelID, sucursalID int) {
	type edge struct {
		name       string
		relationID int
		parent     int
		child      int
	}
	edges := []edge{
		{"make->model", l.profile.Relations.MakeModel, makeID, modelID},
		{"post->make", l.profile.Relations.MakeModel, postID, makeID},
		{"post->model", l.profile.Relations.MakeModel, postID, modelID},
		{"sucursal->post", l.profile.Relations.SucursalPost, sucursalID, postID},
	}

	log := logging.Ctx(ctx)
	for _, e := range edges {
		if e.parent == 0 || e.child == 0 {
			log.Debug().Str("edge", e.name).Msg("skipping relation with missing endpoint")
			continue
		}
		rel := wordpress.NewRelation(e.relationID, e.parent, e.child)
		if err := l.api.SetRelation(ctx, rel); err != nil {
			log.Warn().
				Err(err).
				Str("edge", e.name).
				Int("parent_id", e.parent).
				Int("child_id", e.child).
				Msg("relation assertion failed")
		}
	}
}
