package domain_test

import (
	"errors"
	"testing"

	"nadi/internal/modules/session/domain"
)

func TestConfigValidation(t *testing.T) {
	t.Parallel()
	if err := domain.DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	cases := []domain.Config{
		{BreathSeconds: 0, SessionSeconds: 300},
		{BreathSeconds: -4, SessionSeconds: 300},
		{BreathSeconds: 4, SessionSeconds: 0},
		{BreathSeconds: 4, SessionSeconds: -1},
	}
	for _, cfg := range cases {
		err := cfg.Validate()
		if !errors.Is(err, domain.ErrInvalidConfig) {
			t.Fatalf("config %+v: got %v, want ErrInvalidConfig", cfg, err)
		}
	}
}

func TestDefaultConfigValues(t *testing.T) {
	t.Parallel()
	cfg := domain.DefaultConfig()
	if cfg.BreathSeconds != 4 || cfg.SessionSeconds != 300 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
