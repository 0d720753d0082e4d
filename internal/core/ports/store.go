package ports

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sitegauge/sitegauge/internal/core/domain"
)

// ErrVerdictNotFound is returned by VerdictStore.Get when no
// classification is stored under the given key.
var ErrVerdictNotFound = errors.New("no stored verdict for key")

// VerdictStore persists classifications so repeated lookups of the same
// URL do not re-render the page or re-spend model tokens.
type VerdictStore interface {
	Get(ctx context.Context, key string) (*domain.Classification, error)
	Put(ctx context.Context, key string, c domain.Classification) error
	Recent(ctx context.Context, limit int) ([]domain.Classification, error)
}
