package out

import (
	"context"

	"nadi/internal/modules/session/domain"
)

// EventSink receives controller events. Publish runs outside the
// controller's lock, in the order the events were produced, so a sink may
// call back into the controller.
type EventSink interface {
	Publish(event domain.Event)
}

// SummaryStore persists a finished session as a human-readable note and
// returns its path.
type SummaryStore interface {
	Save(ctx context.Context, record domain.Record) (string, error)
}

// NoteScanner reads every persisted session note back into records, used to
// rebuild the history projection from the notes on disk.
type NoteScanner interface {
	Scan(ctx context.Context) ([]domain.Record, error)
}

// HistoryStore projects finished sessions into a queryable index.
type HistoryStore interface {
	Project(ctx context.Context, record domain.Record) error
	List(ctx context.Context, limit int) ([]domain.Record, error)
	Get(ctx context.Context, id string) (domain.Record, error)
}
