// Package notify delivers operator alerts when a sync run fails. The
// default implementation writes to the structured log; an SMTP or webhook
// notifier can be swapped in behind the same interface.
package notify

import (
	"context"

	"github.com/motorlot/lotsync/pkg/logging"
)

// Notifier delivers an operator-facing alert. Implementations must not
// panic on delivery failure; the sync outcome is already decided by the
// time a notification is sent.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// Log is a Notifier that records alerts in the structured log.
type Log struct{}

// NewLog returns a log-backed Notifier.
func NewLog() *Log { return &Log{} }

func (*Log) Notify(ctx context.Context, subject, message string) error {
	logging.Ctx(ctx).Error().
		Str("subject", subject).
		Msg(message)
	return nil
}

// Nop is a Notifier that discards alerts. Used in tests and dry runs.
type Nop struct{}

func (Nop) Notify(context.Context, string, string) error { return nil }

// Multi fans an alert out to several notifiers, returning the first error
// after attempting all of them.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, subject, message string) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, subject, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
