// Package sync orchestrates the per-record upsert: term resolution, change
// detection, post create/update, and relation assertions. It is strictly
// sequential; the inter-record pacing and batch cap live in the controller
// above it.
package sync

import (
	"context"

	"github.com/motorlot/lotsync/pkg/inventory"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

// API is the slice of the backend client the engine uses. *wordpress.Client
// satisfies it; tests substitute a fake.
type API interface {
	FindPostByOrdenCompra(ctx context.Context, ordenCompra string) (int, error)
	GetPost(ctx context.Context, id int) (*wordpress.Post, error)
	CreatePost(ctx context.Context, post *wordpress.Post) (int, error)
	UpdatePost(ctx context.Context, id int, fields map[string]any) error
	TrashPost(ctx context.Context, id int) error
	FindTermBySlug(ctx context.Context, taxonomy, slug string) (*wordpress.Term, error)
	CreateTerm(ctx context.Context, taxonomy string, term wordpress.Term) (*wordpress.Term, error)
	SetRelation(ctx context.Context, rel wordpress.Relation) error
}

// MediaPipeline supplies attachment IDs for a record's photos.
// *media.Pipeline satisfies it.
type MediaPipeline interface {
	EnsureFeatured(ctx context.Context, rec *inventory.Record) (int, error)
	EnsureGallery(ctx context.Context, rec *inventory.Record, gallery inventory.Gallery) ([]int, error)
}
