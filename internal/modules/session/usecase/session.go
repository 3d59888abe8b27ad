package usecase

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	detectdomain "nadi/internal/modules/detect/domain"
	"nadi/internal/modules/session/domain"
	sessiondto "nadi/internal/modules/session/dto"
	sessionin "nadi/internal/modules/session/port/in"
	sessionout "nadi/internal/modules/session/port/out"
	"nadi/internal/modules/session/service"
	settingsin "nadi/internal/modules/settings/port/in"
	"nadi/internal/platform/clock"
	apperrors "nadi/internal/platform/errors"
	"nadi/internal/platform/id"
	"nadi/internal/platform/timer"
)

const defaultHistoryLimit = 20

// Interactor drives the session controller and persists finished sessions.
// It sits between the controller and the downstream event sink: every event
// passes through Publish, and a completed session is written to the note
// store and the history projection before the event is forwarded.
type Interactor struct {
	controller *service.Controller
	notes      sessionout.SummaryStore
	scanner    sessionout.NoteScanner
	history    sessionout.HistoryStore
	settings   settingsin.Usecase
	ids        id.Generator
	logger     hclog.Logger
	next       sessionout.EventSink

	mu   sync.Mutex
	last domain.Record
}

// NewInteractor builds the interactor and the controller it owns, wiring
// itself in as the controller's event sink.
func NewInteractor(
	scheduler timer.Scheduler,
	clk clock.Clock,
	notes sessionout.SummaryStore,
	scanner sessionout.NoteScanner,
	history sessionout.HistoryStore,
	settings settingsin.Usecase,
	ids id.Generator,
	logger hclog.Logger,
	next sessionout.EventSink,
) sessionin.Usecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	i := &Interactor{
		notes:    notes,
		scanner:  scanner,
		history:  history,
		settings: settings,
		ids:      ids,
		logger:   logger,
		next:     next,
	}
	i.controller = service.NewController(scheduler, clk, i)
	return i
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StateOutput, error) {
	cfg := domain.Config{BreathSeconds: input.BreathSeconds, SessionSeconds: input.SessionSeconds}
	policy := detectdomain.DefaultFeedbackPolicy()
	if i.settings != nil {
		stored, err := i.settings.Get(ctx)
		if err != nil {
			return sessiondto.StateOutput{}, err
		}
		if cfg.BreathSeconds == 0 {
			cfg.BreathSeconds = stored.BreathSeconds
		}
		if cfg.SessionSeconds == 0 {
			cfg.SessionSeconds = stored.SessionSeconds
		}
		policy = detectdomain.FeedbackPolicy{
			MaxDeviation:  stored.MaxDeviation,
			AudioFeedback: stored.AudioFeedback,
			EyeAlerts:     stored.EyeAlerts,
		}
	}
	if err := i.controller.Start(cfg, policy); err != nil {
		return sessiondto.StateOutput{}, err
	}
	return toStateOutput(i.controller.Snapshot()), nil
}

func (i *Interactor) Pause(_ context.Context) {
	i.controller.Pause()
}

func (i *Interactor) Resume(_ context.Context) {
	i.controller.Resume()
}

func (i *Interactor) Stop(_ context.Context) (sessiondto.SummaryOutput, error) {
	summary, ok := i.controller.Stop()
	if !ok {
		return sessiondto.SummaryOutput{}, apperrors.ErrNoActiveSession
	}
	i.mu.Lock()
	notePath := i.last.NotePath
	i.mu.Unlock()
	return toSummaryOutput(summary, notePath), nil
}

func (i *Interactor) Acknowledge(_ context.Context) {
	i.controller.Acknowledge()
}

func (i *Interactor) Report(_ context.Context, input sessiondto.DetectionInput) {
	i.controller.ReportDetection(detectdomain.Signal{
		FaceVisible:      input.FaceVisible,
		PostureDeviation: input.PostureDeviation,
		HeadDeviation:    input.HeadDeviation,
		EyesOpen:         input.EyesOpen,
	})
}

func (i *Interactor) Snapshot(_ context.Context) sessiondto.StateOutput {
	return toStateOutput(i.controller.Snapshot())
}

func (i *Interactor) History(ctx context.Context, limit int) ([]sessiondto.RecordOutput, error) {
	if i.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	records, err := i.history.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.RecordOutput, 0, len(records))
	for _, record := range records {
		out = append(out, toRecordOutput(record))
	}
	return out, nil
}

func (i *Interactor) GetRecord(ctx context.Context, recordID string) (sessiondto.RecordOutput, error) {
	if i.history == nil {
		return sessiondto.RecordOutput{}, apperrors.ErrNotFound
	}
	record, err := i.history.Get(ctx, recordID)
	if err != nil {
		return sessiondto.RecordOutput{}, err
	}
	return toRecordOutput(record), nil
}

// Reindex rescans the session notes and projects every record it finds,
// rebuilding the sqlite index after manual edits or a deleted database.
func (i *Interactor) Reindex(ctx context.Context) (int, error) {
	if i.scanner == nil || i.history == nil {
		return 0, nil
	}
	records, err := i.scanner.Scan(ctx)
	if err != nil {
		return 0, err
	}
	for _, record := range records {
		if err := i.history.Project(ctx, record); err != nil {
			return 0, err
		}
	}
	return len(records), nil
}

// Publish implements the controller's event sink. Completed sessions are
// persisted before the event continues downstream, so subscribers observing
// session_completed can rely on the record already existing.
func (i *Interactor) Publish(event domain.Event) {
	if event.Kind == domain.EventSessionCompleted {
		i.persist(event.Summary)
	}
	if i.next != nil {
		i.next.Publish(event)
	}
}

func (i *Interactor) persist(summary domain.Summary) {
	ctx := context.Background()
	record := domain.Record{
		ID:             i.ids.New(),
		StartedAt:      summary.StartedAt,
		EndedAt:        summary.EndedAt,
		ElapsedSeconds: summary.ElapsedSeconds,
		CycleCount:     summary.CycleCount,
		FinalScore:     summary.FinalScore,
		BreathSeconds:  summary.Config.BreathSeconds,
		SessionSeconds: summary.Config.SessionSeconds,
		Completed:      summary.Expired,
	}
	if i.notes != nil {
		path, err := i.notes.Save(ctx, record)
		if err != nil {
			i.logger.Error("save session note", "error", err)
		} else {
			record.NotePath = path
		}
	}
	if i.history != nil {
		if err := i.history.Project(ctx, record); err != nil {
			i.logger.Error("project session record", "error", err)
		}
	}
	i.mu.Lock()
	i.last = record
	i.mu.Unlock()
}

func toStateOutput(state domain.State) sessiondto.StateOutput {
	return sessiondto.StateOutput{
		Status:                 string(state.Status),
		Phase:                  state.Phase.String(),
		Instruction:            state.Phase.Instruction(),
		BreathSeconds:          state.Config.BreathSeconds,
		SessionSeconds:         state.Config.SessionSeconds,
		CycleCount:             state.CycleCount,
		ElapsedSeconds:         state.ElapsedSeconds,
		RemainingBreathSeconds: state.RemainingBreathSeconds,
		SmoothedScore:          state.SmoothedScore,
	}
}

func toSummaryOutput(summary domain.Summary, notePath string) sessiondto.SummaryOutput {
	return sessiondto.SummaryOutput{
		StartedAt:      summary.StartedAt,
		EndedAt:        summary.EndedAt,
		ElapsedSeconds: summary.ElapsedSeconds,
		CycleCount:     summary.CycleCount,
		FinalScore:     summary.FinalScore,
		BreathSeconds:  summary.Config.BreathSeconds,
		SessionSeconds: summary.Config.SessionSeconds,
		Completed:      summary.Expired,
		NotePath:       notePath,
	}
}

func toRecordOutput(record domain.Record) sessiondto.RecordOutput {
	return sessiondto.RecordOutput{
		ID:             record.ID,
		StartedAt:      record.StartedAt,
		EndedAt:        record.EndedAt,
		ElapsedSeconds: record.ElapsedSeconds,
		CycleCount:     record.CycleCount,
		FinalScore:     record.FinalScore,
		BreathSeconds:  record.BreathSeconds,
		SessionSeconds: record.SessionSeconds,
		Completed:      record.Completed,
		NotePath:       record.NotePath,
	}
}
