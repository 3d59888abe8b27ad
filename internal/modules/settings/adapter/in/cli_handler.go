package in

import (
	"context"

	"nadi/internal/modules/settings/dto"
	settingsin "nadi/internal/modules/settings/port/in"
)

type CLIHandler struct {
	usecase settingsin.Usecase
}

func NewCLIHandler(usecase settingsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Show(ctx context.Context) (dto.SettingsOutput, error) {
	return h.usecase.Get(ctx)
}

func (h CLIHandler) Update(ctx context.Context, input dto.UpdateInput) (dto.SettingsOutput, error) {
	return h.usecase.Update(ctx, input)
}
