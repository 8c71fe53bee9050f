package driven

import "context"

// PlaylistWriter defines the interface for persisting an assembled playlist.
type PlaylistWriter interface {
	// Write fully replaces target with content. Readers see either the old
	// or the new content, never a mix.
	Write(ctx context.Context, target string, content []byte) error
}
