package bootstrap

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	detectinadapter "nadi/internal/modules/detect/adapter/in"
	detectoutadapter "nadi/internal/modules/detect/adapter/out"
	detectin "nadi/internal/modules/detect/port/in"
	detectout "nadi/internal/modules/detect/port/out"
	detectusecase "nadi/internal/modules/detect/usecase"
	sessioninadapter "nadi/internal/modules/session/adapter/in"
	sessionoutadapter "nadi/internal/modules/session/adapter/out"
	sessiondomain "nadi/internal/modules/session/domain"
	sessionin "nadi/internal/modules/session/port/in"
	sessionusecase "nadi/internal/modules/session/usecase"
	settingsinadapter "nadi/internal/modules/settings/adapter/in"
	settingsoutadapter "nadi/internal/modules/settings/adapter/out"
	settingsin "nadi/internal/modules/settings/port/in"
	settingsusecase "nadi/internal/modules/settings/usecase"
	"nadi/internal/platform/clock"
	"nadi/internal/platform/config"
	"nadi/internal/platform/id"
	"nadi/internal/platform/timer"
	uiapp "nadi/internal/ui/app"
	breathview "nadi/internal/ui/views/breath"
)

type App struct {
	Sessions sessionin.Usecase
	Settings settingsin.Usecase
	Detector detectin.Usecase

	SessionCLI  sessioninadapter.CLIHandler
	SettingsCLI settingsinadapter.CLIHandler
	DetectorCLI detectinadapter.CLIHandler

	broadcaster *sessionoutadapter.Broadcaster
	poller      *detectinadapter.Poller
	rawDetector detectout.Detector
	hasDetector bool
}

// New wires the application. detectorOverride, when non-empty, wins over the
// detector binary from settings.
func New(cfg config.Config, detectorOverride string) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}
	scheduler := timer.WallScheduler{}
	logger := hclog.New(&hclog.LoggerOptions{Name: "nadi", Output: os.Stderr, Level: hclog.Error})

	settingsUC := settingsusecase.NewInteractor(settingsoutadapter.NewFileSettingsStore(cfg.SettingsPath))

	broadcaster := sessionoutadapter.NewBroadcaster(sessionoutadapter.NewBellSink(os.Stdout))

	historyStore, err := sessionoutadapter.NewSQLiteHistoryStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new history store: %w", err)
	}
	noteStore := sessionoutadapter.NewLogSessionStore(cfg.SessionsPath)
	sessionUC := sessionusecase.NewInteractor(
		scheduler,
		clk,
		noteStore,
		noteStore,
		historyStore,
		settingsUC,
		ids,
		logger,
		broadcaster,
	)

	binary := detectorOverride
	if binary == "" {
		stored, err := settingsUC.Get(context.Background())
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		binary = stored.DetectorBinary
	}
	rawDetector := detectoutadapter.NewGRPCDetector(binary)
	detectorUC := detectusecase.NewInteractor(rawDetector)
	poller := detectinadapter.NewPoller(detectorUC, sessionUC, scheduler, detectinadapter.DefaultSampleInterval, logger)

	return &App{
		Sessions:    sessionUC,
		Settings:    settingsUC,
		Detector:    detectorUC,
		SessionCLI:  sessioninadapter.NewCLIHandler(sessionUC),
		SettingsCLI: settingsinadapter.NewCLIHandler(settingsUC),
		DetectorCLI: detectinadapter.NewCLIHandler(detectorUC),
		broadcaster: broadcaster,
		poller:      poller,
		rawDetector: rawDetector,
		hasDetector: binary != "",
	}, nil
}

// Events registers a new subscriber on the session event stream.
func (a *App) Events(buffer int) <-chan sessiondomain.Event {
	sink := sessionoutadapter.NewChannelSink(buffer)
	a.broadcaster.Add(sink)
	return sink.Events()
}

// StartDetection begins posture sampling when a detector binary is
// configured. The returned cancel stops sampling and kills the plugin.
func (a *App) StartDetection() timer.Cancel {
	if !a.hasDetector {
		return func() {}
	}
	cancel := a.poller.Start()
	return func() {
		cancel()
		a.rawDetector.Close()
	}
}

func RunTUI(app *App) error {
	stopDetection := app.StartDetection()
	defer stopDetection()

	raw := app.Events(256)
	events := make(chan breathview.SessionEvent, 256)
	go func() {
		for event := range raw {
			select {
			case events <- uiEvent(event):
			default:
			}
		}
	}()

	model := uiapp.NewModel(app.Sessions, events)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func uiEvent(event sessiondomain.Event) breathview.SessionEvent {
	return breathview.SessionEvent{
		Kind:             string(event.Kind),
		Phase:            event.Phase.String(),
		Instruction:      event.Phase.Instruction(),
		RemainingSeconds: event.RemainingSeconds,
		ElapsedSeconds:   event.ElapsedSeconds,
		CycleCount:       event.CycleCount,
		Severity:         event.Severity,
		FinalScore:       event.Summary.FinalScore,
		Completed:        event.Summary.Expired,
	}
}
