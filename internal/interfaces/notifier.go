package interfaces

import "context"

// Notifier delivers a human-readable alert. Send failures are logged by
// callers and never abort a batch.
type Notifier interface {
	Send(ctx context.Context, message string) error
}
