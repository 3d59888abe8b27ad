package in

import (
	"context"

	"nadi/internal/modules/session/dto"
)

type Usecase interface {
	// Start begins a session, filling zero-valued durations from settings.
	Start(ctx context.Context, input dto.StartInput) (dto.StateOutput, error)
	Pause(ctx context.Context)
	Resume(ctx context.Context)
	// Stop ends the session early and persists its summary. Returns
	// apperrors.ErrNoActiveSession when nothing is running or paused.
	Stop(ctx context.Context) (dto.SummaryOutput, error)
	// Acknowledge dismisses a completed session, returning to idle.
	Acknowledge(ctx context.Context)
	// Report feeds one detector frame into the running session.
	Report(ctx context.Context, input dto.DetectionInput)
	Snapshot(ctx context.Context) dto.StateOutput
	History(ctx context.Context, limit int) ([]dto.RecordOutput, error)
	GetRecord(ctx context.Context, id string) (dto.RecordOutput, error)
	// Reindex rebuilds the history projection from the notes on disk and
	// returns the number of records projected.
	Reindex(ctx context.Context) (int, error)
}
