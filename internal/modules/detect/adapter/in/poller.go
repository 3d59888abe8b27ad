package in

import (
	"context"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	detectin "nadi/internal/modules/detect/port/in"
	sessiondto "nadi/internal/modules/session/dto"
	sessionin "nadi/internal/modules/session/port/in"
	"nadi/internal/platform/timer"
)

const DefaultSampleInterval = time.Second

// Poller samples the detector on a fixed interval and feeds each frame into
// the session. Sampling failures are logged and skipped; the session side
// already tolerates gaps in the detection stream.
type Poller struct {
	detector  detectin.Usecase
	sessions  sessionin.Usecase
	scheduler timer.Scheduler
	interval  time.Duration
	logger    hclog.Logger
}

func NewPoller(detector detectin.Usecase, sessions sessionin.Usecase, scheduler timer.Scheduler, interval time.Duration, logger hclog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Poller{
		detector:  detector,
		sessions:  sessions,
		scheduler: scheduler,
		interval:  interval,
		logger:    logger,
	}
}

// Start begins sampling and returns a cancel that stops it.
func (p *Poller) Start() timer.Cancel {
	return p.scheduler.Every(p.interval, p.sampleOnce)
}

func (p *Poller) sampleOnce() {
	ctx := context.Background()
	signal, err := p.detector.Sample(ctx)
	if err != nil {
		p.logger.Debug("detector sample failed", "error", err)
		return
	}
	p.sessions.Report(ctx, sessiondto.DetectionInput{
		FaceVisible:      signal.FaceVisible,
		PostureDeviation: signal.PostureDeviation,
		HeadDeviation:    signal.HeadDeviation,
		EyesOpen:         signal.EyesOpen,
	})
}
