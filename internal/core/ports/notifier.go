package ports

import (
	"context"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

// Notifier delivers user-facing notifications. Implementations must not block
// the caller for long; delivery failures are theirs to handle.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}
