package sync

import (
	"fmt"
	"time"
)

// Action is the terminal outcome of processing one record.
type Action string

const (
	// ActionCreated means a new post was created.
	ActionCreated Action = "created"
	// ActionUpdated means an existing post received a partial update.
	ActionUpdated Action = "updated"
	// ActionTrashed means a retired vehicle's post was moved to trash.
	ActionTrashed Action = "trashed"
	// ActionNoOp means the post already matched the desired state.
	ActionNoOp Action = "noop"
	// ActionSkipped means the record's status required no remote work.
	ActionSkipped Action = "skipped"
	// ActionFailed means processing stopped on an error.
	ActionFailed Action = "failed"
)

// Outcome reports what happened to a single record.
type Outcome struct {
	Row         int
	OrdenCompra string
	Action      Action
	PostID      int
	// ChangedFields lists the paths sent in a partial update.
	ChangedFields []string
	Err           error
}

// Message renders the outcome as the status text written back onto the row.
func (o *Outcome) Message() string {
	switch o.Action {
	case ActionCreated:
		return fmt.Sprintf("Publicado (post %d)", o.PostID)
	case ActionUpdated:
		return fmt.Sprintf("Actualizado (post %d, %d campos)", o.PostID, len(o.ChangedFields))
	case ActionTrashed:
		return fmt.Sprintf("Retirado (post %d)", o.PostID)
	case ActionNoOp:
		return fmt.Sprintf("Sin cambios (post %d)", o.PostID)
	case ActionSkipped:
		return "Omitido"
	case ActionFailed:
		return "Error: " + o.Err.Error()
	default:
		return string(o.Action)
	}
}

// Synced reports whether the record's sync timestamp should advance.
// Failures leave the timestamp untouched so the row is retried next run.
func (o *Outcome) Synced() bool {
	switch o.Action {
	case ActionCreated, ActionUpdated, ActionTrashed, ActionNoOp:
		return true
	default:
		return false
	}
}

// Result summarizes one sync run.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	Processed int
	Created   int
	Updated   int
	Trashed   int
	NoOps     int
	Skipped   int
	Failed    int

	// NextRow is the resumption checkpoint when the batch cap stopped the
	// run before the end of the source. Zero means the run reached the end.
	NextRow int

	Outcomes []*Outcome
}

// Record folds one outcome into the result counters.
func (r *Result) Record(o *Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Action {
	case ActionCreated:
		r.Created++
		r.Processed++
	case ActionUpdated:
		r.Updated++
		r.Processed++
	case ActionTrashed:
		r.Trashed++
		r.Processed++
	case ActionNoOp:
		r.NoOps++
		r.Processed++
	case ActionSkipped:
		r.Skipped++
	case ActionFailed:
		r.Failed++
		r.Processed++
	}
}

// Duration returns the wall-clock time of the run.
func (r *Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary returns a one-line human-readable report.
func (r *Result) Summary() string {
	s := fmt.Sprintf("processed %d record(s) in %s: %d created, %d updated, %d trashed, %d unchanged",
		r.Processed, r.Duration().Round(time.Millisecond), r.Created, r.Updated, r.Trashed, r.NoOps)
	if r.Skipped > 0 {
		s += fmt.Sprintf(", %d skipped", r.Skipped)
	}
	if r.Failed > 0 {
		s += fmt.Sprintf(", %d failed", r.Failed)
	}
	if r.NextRow > 0 {
		s += fmt.Sprintf(" (resume at row %d)", r.NextRow)
	}
	return s
}
