package ports

import (
	"context"

	"github.com/jmerino/hiddengems/internal/core/domain"
)

// GemRepository is the optional persistence sink behind the in-memory
// catalog. The contract is coarse on purpose: every catalog mutation
// re-upserts the full gem list, and startup loads the full list before the
// service accepts events.
type GemRepository interface {
	LoadAll(ctx context.Context) ([]domain.Gem, error)
	ReplaceAll(ctx context.Context, gems []domain.Gem) error
}
