package out

import (
	"context"

	"nadi/internal/modules/detect/domain"
)

// Detector produces posture signals from an external source, typically a
// camera-backed plugin process.
type Detector interface {
	Sample(ctx context.Context) (domain.Signal, error)
	Check(ctx context.Context) (domain.DetectorInfo, error)
	Close()
}
