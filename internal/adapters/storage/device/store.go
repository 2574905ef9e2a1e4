package device

import "context"

// Store provides the stable per-install identifier.
type Store interface {
	GetOrCreateInstallID(ctx context.Context) (string, error)
}
