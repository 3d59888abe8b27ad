package in

import (
	"context"

	"nadi/internal/modules/detect/dto"
	detectin "nadi/internal/modules/detect/port/in"
)

type CLIHandler struct {
	usecase detectin.Usecase
}

func NewCLIHandler(usecase detectin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Check(ctx context.Context) (dto.DetectorInfoOutput, error) {
	return h.usecase.Check(ctx)
}
