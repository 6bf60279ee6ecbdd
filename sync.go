package lotsync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/motorlot/lotsync/pkg/errors"
	"github.com/motorlot/lotsync/pkg/inventory"
	"github.com/motorlot/lotsync/pkg/logging"
	syncx "github.com/motorlot/lotsync/pkg/sync"
)

// Sync implements Lotsync. It loads the source once, walks records in
// source order, and runs each eligible record through the orchestrator,
// pausing between records and stopping at the batch cap. Per-record
// failures are written back to the row and never stop the batch; only a
// run-level failure aborts and notifies.
func (ls *lotsync) Sync(ctx context.Context, opts ...syncx.Option) (*syncx.Result, error) {
	options := (&syncx.Options{
		BatchSize: ls.config.batchSize,
		Delay:     ls.config.delay,
	}).Apply(opts...)

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.Ctx(ctx)

	result := &syncx.Result{RunID: runID, StartedAt: time.Now()}

	if options.Manual && options.StartRow == 0 && ls.store != nil {
		row, err := ls.store.ManualStartRow()
		if err != nil {
			return result, ls.abort(ctx, result, err)
		}
		options.StartRow = row
	}

	if ls.store != nil {
		if err := ls.store.BeginRun(ctx, runID, result.StartedAt); err != nil {
			log.Warn().Err(err).Msg("failed to record run start")
		}
	}

	err := ls.run(ctx, options, result)

	result.FinishedAt = time.Now()
	if ls.store != nil {
		if ferr := ls.store.FinishRun(ctx, runID, result.Processed, result.Failed, err); ferr != nil {
			log.Warn().Err(ferr).Msg("failed to record run finish")
		}
	}

	if err != nil {
		return result, ls.abort(ctx, result, err)
	}
	log.Info().Msg(result.Summary())
	return result, nil
}

// run executes the batch loop. Returned errors are run-level; per-record
// errors are already folded into the result by the time run returns.
func (ls *lotsync) run(ctx context.Context, options *syncx.Options, result *syncx.Result) error {
	records, err := ls.source.Load(ctx)
	if err != nil {
		return err
	}

	orchestrator := syncx.NewOrchestrator(ls.api, ls.media, ls.profile)
	log := logging.Ctx(ctx)
	first := true

	for _, rec := range records {
		if options.Manual && options.StartRow > 0 && rec.Row < options.StartRow {
			continue
		}
		if !ls.eligible(rec, options) {
			continue
		}

		if result.Processed >= options.BatchSize {
			result.NextRow = rec.Row
			log.Info().Int("next_row", rec.Row).Msg("batch cap reached, checkpointing")
			break
		}

		// Pacing applies between records, never before the first and
		// never mid-record. Cancellation is honored only here.
		if !first {
			if err := ls.pause(ctx, options.Delay); err != nil {
				return err
			}
		}
		first = false

		outcome := orchestrator.Process(ctx, rec)
		result.Record(outcome)
		ls.writeBack(ctx, rec, outcome)
	}

	if options.Manual && ls.store != nil {
		if result.NextRow > 0 {
			if err := ls.store.SetManualStartRow(result.NextRow); err != nil {
				log.Warn().Err(err).Msg("failed to persist checkpoint")
			}
		} else if err := ls.store.ClearManualStartRow(); err != nil {
			log.Warn().Err(err).Msg("failed to clear checkpoint")
		}
	}

	return ls.source.Flush(ctx)
}

// eligible applies the change-detection gate. Manual mode bypasses the
// timestamp comparison; the natural-key requirement is enforced by the
// orchestrator either way.
func (ls *lotsync) eligible(rec *inventory.Record, options *syncx.Options) bool {
	if options.Manual {
		return true
	}
	return rec.NeedsSync()
}

// writeBack records the outcome on the source row. Write-back failures are
// logged, not fatal: the remote state is already committed and idempotent
// resolution makes the next run converge.
func (ls *lotsync) writeBack(ctx context.Context, rec *inventory.Record, outcome *syncx.Outcome) {
	if outcome.Action == syncx.ActionSkipped {
		return
	}
	log := logging.Ctx(ctx)

	if err := ls.source.SetStatus(ctx, rec.Row, outcome.Message(), outcome.PostID); err != nil {
		log.Warn().Err(err).Int("row", rec.Row).Msg("failed to write status back")
	}
	if outcome.Synced() {
		if err := ls.source.SetSyncTime(ctx, rec.Row, time.Now()); err != nil {
			log.Warn().Err(err).Int("row", rec.Row).Msg("failed to advance sync timestamp")
		}
	}
	if rec.MakeID != 0 || rec.ModelID != 0 {
		if err := ls.source.SetTermIDs(ctx, rec.Row, rec.MakeID, rec.ModelID); err != nil {
			log.Warn().Err(err).Int("row", rec.Row).Msg("failed to cache term ids")
		}
	}
	if rec.FeaturedImageID != 0 {
		if err := ls.source.SetFeaturedImageID(ctx, rec.Row, rec.FeaturedImageID); err != nil {
			log.Warn().Err(err).Int("row", rec.Row).Msg("failed to cache featured image id")
		}
	}
	for _, gallery := range []inventory.Gallery{inventory.GalleryExterior, inventory.GalleryInterior} {
		ids := rec.GalleryIDs(gallery)
		if len(ids) == 0 {
			continue
		}
		if err := ls.source.SetGalleryIDs(ctx, rec.Row, gallery, ids); err != nil {
			log.Warn().Err(err).Int("row", rec.Row).Str("gallery", string(gallery)).Msg("failed to cache gallery ids")
		}
	}
}

// pause waits the inter-record delay, returning early on cancellation.
func (ls *lotsync) pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return errors.ErrCanceled
	}
}

// abort wraps a run-level failure, notifies the operator, and preserves the
// per-record progress already in the result.
func (ls *lotsync) abort(ctx context.Context, result *syncx.Result, err error) error {
	runErr := errors.NewRunError(result.RunID, result.Processed, err)
	if ls.notifier != nil {
		if nerr := ls.notifier.Notify(ctx, "inventory sync failed", runErr.Error()); nerr != nil {
			logging.Ctx(ctx).Warn().Err(nerr).Msg("failed to deliver run failure notification")
		}
	}
	return runErr
}
