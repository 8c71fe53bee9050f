package driven

import "context"

// Notifier defines the interface for delivering a rendered change report.
// This is a driven port that will be implemented by concrete adapters (e.g., Telegram, local file).
type Notifier interface {
	// Name identifies the notifier in logs and metrics.
	Name() string

	// Notify delivers text. Implementations with a message size limit split
	// it into several deliveries.
	Notify(ctx context.Context, text string) error
}
