package driven

import "context"

// SourceFetcher defines the interface for obtaining the raw text of a playlist.
// This is a driven port that will be implemented by concrete adapters (e.g., HTTP client, file reader).
type SourceFetcher interface {
	// Fetch returns the playlist content found at location.
	Fetch(ctx context.Context, location string) ([]byte, error)
}
