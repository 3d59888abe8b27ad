package in

import (
	"context"

	"nadi/internal/modules/detect/dto"
)

type Usecase interface {
	// Sample fetches one posture frame from the configured detector.
	Sample(ctx context.Context) (dto.SignalOutput, error)
	// Check verifies the detector binary starts and answers the handshake.
	Check(ctx context.Context) (dto.DetectorInfoOutput, error)
}
