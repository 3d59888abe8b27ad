package in

import (
	"context"

	sessiondto "nadi/internal/modules/session/dto"
	sessionin "nadi/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, breathSeconds, sessionSeconds int) (sessiondto.StateOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{BreathSeconds: breathSeconds, SessionSeconds: sessionSeconds})
}

func (h CLIHandler) Stop(ctx context.Context) (sessiondto.SummaryOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]sessiondto.RecordOutput, error) {
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) GetRecord(ctx context.Context, id string) (sessiondto.RecordOutput, error) {
	return h.usecase.GetRecord(ctx, id)
}

func (h CLIHandler) Reindex(ctx context.Context) (int, error) {
	return h.usecase.Reindex(ctx)
}
