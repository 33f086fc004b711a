package dispatch

import (
	"context"

	"vigil-go/internal/domain"
)

// Broadcaster pushes in-app notifications to connected clients. A targeted
// notification reaches one user; an untargeted one reaches every connected
// administrator.
type Broadcaster interface {
	Notify(ctx context.Context, n *domain.Notification) error
}
