package usecase

import (
	"context"

	"nadi/internal/modules/detect/dto"
	detectin "nadi/internal/modules/detect/port/in"
	detectout "nadi/internal/modules/detect/port/out"
)

type Interactor struct {
	detector detectout.Detector
}

func NewInteractor(detector detectout.Detector) detectin.Usecase {
	return &Interactor{detector: detector}
}

func (i *Interactor) Sample(ctx context.Context) (dto.SignalOutput, error) {
	signal, err := i.detector.Sample(ctx)
	if err != nil {
		return dto.SignalOutput{}, err
	}
	return dto.SignalOutput{
		FaceVisible:      signal.FaceVisible,
		PostureDeviation: signal.PostureDeviation,
		HeadDeviation:    signal.HeadDeviation,
		EyesOpen:         signal.EyesOpen,
	}, nil
}

func (i *Interactor) Check(ctx context.Context) (dto.DetectorInfoOutput, error) {
	info, err := i.detector.Check(ctx)
	if err != nil {
		return dto.DetectorInfoOutput{}, err
	}
	return dto.DetectorInfoOutput{Name: info.Name, Version: info.Version, Capabilities: info.Capabilities}, nil
}
