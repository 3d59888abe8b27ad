package usecase

import (
	"context"
	"errors"

	"nadi/internal/modules/settings/domain"
	"nadi/internal/modules/settings/dto"
	settingsin "nadi/internal/modules/settings/port/in"
	settingsout "nadi/internal/modules/settings/port/out"
	apperrors "nadi/internal/platform/errors"
)

type Interactor struct {
	store settingsout.Store
}

func NewInteractor(store settingsout.Store) settingsin.Usecase {
	return &Interactor{store: store}
}

// Get returns stored settings, falling back to defaults when nothing has
// been saved yet.
func (i *Interactor) Get(ctx context.Context) (dto.SettingsOutput, error) {
	settings, err := i.load(ctx)
	if err != nil {
		return dto.SettingsOutput{}, err
	}
	return toOutput(settings), nil
}

func (i *Interactor) Update(ctx context.Context, input dto.UpdateInput) (dto.SettingsOutput, error) {
	settings, err := i.load(ctx)
	if err != nil {
		return dto.SettingsOutput{}, err
	}
	if input.BreathSeconds != nil {
		settings.BreathSeconds = *input.BreathSeconds
	}
	if input.SessionSeconds != nil {
		settings.SessionSeconds = *input.SessionSeconds
	}
	if input.MaxDeviation != nil {
		settings.MaxDeviation = *input.MaxDeviation
	}
	if input.AudioFeedback != nil {
		settings.AudioFeedback = *input.AudioFeedback
	}
	if input.EyeAlerts != nil {
		settings.EyeAlerts = *input.EyeAlerts
	}
	if input.DetectorBinary != nil {
		settings.DetectorBinary = *input.DetectorBinary
	}
	if err := settings.Validate(); err != nil {
		return dto.SettingsOutput{}, err
	}
	if err := i.store.Save(ctx, settings); err != nil {
		return dto.SettingsOutput{}, err
	}
	return toOutput(settings), nil
}

func (i *Interactor) load(ctx context.Context) (domain.Settings, error) {
	settings, err := i.store.Load(ctx)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.Default(), nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func toOutput(s domain.Settings) dto.SettingsOutput {
	return dto.SettingsOutput{
		BreathSeconds:  s.BreathSeconds,
		SessionSeconds: s.SessionSeconds,
		MaxDeviation:   s.MaxDeviation,
		AudioFeedback:  s.AudioFeedback,
		EyeAlerts:      s.EyeAlerts,
		DetectorBinary: s.DetectorBinary,
	}
}
