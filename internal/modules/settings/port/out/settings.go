package out

import (
	"context"

	"nadi/internal/modules/settings/domain"
)

// Store persists user settings. Load returns apperrors.ErrNotFound when no
// settings file exists yet.
type Store interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
}
