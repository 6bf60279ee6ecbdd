// Package lotsync synchronizes a tabular vehicle inventory into a content
// backend: one post per purchased vehicle, taxonomy terms resolved on the
// fly, photos uploaded once and reused, retired vehicles trashed. Runs are
// batched, rate-limited, and resumable through a persisted checkpoint.
package lotsync

import (
	"context"
	"fmt"

	"github.com/motorlot/lotsync/pkg/inventory"
	"github.com/motorlot/lotsync/pkg/media"
	"github.com/motorlot/lotsync/pkg/notify"
	"github.com/motorlot/lotsync/pkg/schema"
	"github.com/motorlot/lotsync/pkg/sync"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

// Lotsync runs inventory synchronization against a configured backend.
type Lotsync interface {
	// Sync executes one batch run and returns its result. A run that
	// processes zero records is a successful run.
	Sync(ctx context.Context, opts ...sync.Option) (*sync.Result, error)

	// Offset returns the persisted manual start row, 0 when unset.
	Offset() (int, error)

	// SetOffset persists a manual start row for the next run.
	SetOffset(row int) error

	// ClearOffset removes the persisted manual start row.
	ClearOffset() error

	// Close releases held resources.
	Close() error
}

// lotsync is the internal implementation of the Lotsync interface.
type lotsync struct {
	config *config

	source   inventory.Source
	api      sync.API
	media    sync.MediaPipeline
	profile  *schema.Profile
	store    StateStore
	notifier notify.Notifier
}

// New creates a Lotsync instance from the given options. A source and
// either an API client or backend config are required.
func New(opts ...Option) (Lotsync, error) {
	ls := &lotsync{config: defaultConfig()}

	if err := ls.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	if ls.source == nil {
		return nil, fmt.Errorf("an inventory source is required")
	}

	if ls.api == nil {
		if ls.config.backend.BaseURL == "" {
			return nil, fmt.Errorf("a backend client or backend config is required")
		}
		var clientOpts []wordpress.ClientOption
		if ts, ok := ls.store.(wordpress.TokenStore); ok && ls.store != nil {
			clientOpts = append(clientOpts, wordpress.WithTokenStore(ts))
		}
		client, err := wordpress.NewClient(ls.config.backend, clientOpts...)
		if err != nil {
			return nil, err
		}
		ls.api = client
	}

	if ls.media == nil {
		if uploader, ok := ls.api.(media.Uploader); ok {
			ls.media = media.NewPipeline(uploader)
		}
	}
	if ls.profile == nil {
		ls.profile = schema.Default()
	}
	if ls.notifier == nil {
		ls.notifier = notify.NewLog()
	}

	return ls, nil
}

// Offset implements Lotsync.
func (ls *lotsync) Offset() (int, error) {
	if ls.store == nil {
		return 0, nil
	}
	return ls.store.ManualStartRow()
}

// SetOffset implements Lotsync.
func (ls *lotsync) SetOffset(row int) error {
	if ls.store == nil {
		return fmt.Errorf("no state store configured")
	}
	return ls.store.SetManualStartRow(row)
}

// ClearOffset implements Lotsync.
func (ls *lotsync) ClearOffset() error {
	if ls.store == nil {
		return nil
	}
	return ls.store.ClearManualStartRow()
}

// Close implements Lotsync.
func (ls *lotsync) Close() error {
	if closer, ok := ls.store.(interface{ Close() error }); ok && ls.store != nil {
		return closer.Close()
	}
	return nil
}
