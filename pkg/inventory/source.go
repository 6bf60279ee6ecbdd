package inventory

import (
	"context"
	"time"
)

// Source is the tabular inventory store the engine reconciles from. Records
// are read once per run in source order; per-record write-backs persist the
// result message, remote identifiers, and the synchronization checkpoint.
type Source interface {
	// Load reads all records in source order.
	Load(ctx context.Context) ([]*Record, error)

	// SetStatus writes the result message for a row, and the post ID when
	// non-zero.
	SetStatus(ctx context.Context, row int, message string, postID int) error

	// SetSyncTime advances the synchronization checkpoint for a row.
	SetSyncTime(ctx context.Context, row int, t time.Time) error

	// SetTermIDs caches resolved make/model term IDs on a row.
	SetTermIDs(ctx context.Context, row, makeID, modelID int) error

	// SetFeaturedImageID caches the featured media ID on a row.
	SetFeaturedImageID(ctx context.Context, row, id int) error

	// SetGalleryIDs caches gallery media IDs on a row.
	SetGalleryIDs(ctx context.Context, row int, gallery Gallery, ids []int) error

	// Flush persists any buffered write-backs.
	Flush(ctx context.Context) error
}
