package lotsync

import (
	"context"
	"time"

	"github.com/motorlot/lotsync/pkg/inventory"
	"github.com/motorlot/lotsync/pkg/notify"
	"github.com/motorlot/lotsync/pkg/schema"
	"github.com/motorlot/lotsync/pkg/sync"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

// StateStore persists run bookkeeping and the manual start-row checkpoint.
// *state.Store satisfies it.
type StateStore interface {
	ManualStartRow() (int, error)
	SetManualStartRow(row int) error
	ClearManualStartRow() error
	BeginRun(ctx context.Context, id string, startedAt time.Time) error
	FinishRun(ctx context.Context, id string, processed, failed int, runErr error) error
}

// config holds the assembled collaborators before New finishes wiring them.
type config struct {
	backend   wordpress.Config
	batchSize int
	delay     time.Duration
}

func defaultConfig() *config {
	return &config{
		batchSize: sync.DefaultBatchSize,
		delay:     sync.DefaultDelay,
	}
}

// Option is a function that configures a Lotsync instance.
type Option func(*lotsync) error

func (ls *lotsync) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(ls); err != nil {
			return err
		}
	}
	return nil
}

// WithSource sets the inventory source to synchronize from.
func WithSource(source inventory.Source) Option {
	return func(ls *lotsync) error {
		ls.source = source
		return nil
	}
}

// WithBackend configures the content backend connection. A client is built
// from it, reusing the state store as token cache when one is configured.
func WithBackend(cfg wordpress.Config) Option {
	return func(ls *lotsync) error {
		ls.config.backend = cfg
		return nil
	}
}

// WithAPI injects a pre-built backend client, bypassing WithBackend.
func WithAPI(api sync.API) Option {
	return func(ls *lotsync) error {
		ls.api = api
		return nil
	}
}

// WithMedia injects the media pipeline. Without it, a default pipeline is
// built over the backend client.
func WithMedia(m sync.MediaPipeline) Option {
	return func(ls *lotsync) error {
		ls.media = m
		return nil
	}
}

// WithProfile sets the site profile. Defaults to the stock vehicle profile.
func WithProfile(p *schema.Profile) Option {
	return func(ls *lotsync) error {
		if err := p.Validate(); err != nil {
			return err
		}
		ls.profile = p
		return nil
	}
}

// WithStateStore sets the persistent state store for checkpoints, run
// history, and the token cache.
func WithStateStore(store StateStore) Option {
	return func(ls *lotsync) error {
		ls.store = store
		return nil
	}
}

// WithNotifier sets the run-failure notifiers. More than one fans out
// through notify.Multi. Defaults to the log notifier.
func WithNotifier(notifiers ...notify.Notifier) Option {
	return func(ls *lotsync) error {
		switch len(notifiers) {
		case 0:
			return nil
		case 1:
			ls.notifier = notifiers[0]
		default:
			ls.notifier = notify.Multi(notifiers)
		}
		return nil
	}
}

// WithBatchSize sets the default processed-record cap per run.
func WithBatchSize(n int) Option {
	return func(ls *lotsync) error {
		ls.config.batchSize = n
		return nil
	}
}

// WithDelay sets the default inter-record pause.
func WithDelay(d time.Duration) Option {
	return func(ls *lotsync) error {
		ls.config.delay = d
		return nil
	}
}
