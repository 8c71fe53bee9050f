package driven

import (
	"context"

	"github.com/alorle/iptv-checker/internal/port/driven"
)

// PlaylistFileWriter implements the PlaylistWriter port on the local
// filesystem with atomic replacement.
type PlaylistFileWriter struct{}

func NewPlaylistFileWriter() *PlaylistFileWriter {
	return &PlaylistFileWriter{}
}

func (w *PlaylistFileWriter) Write(ctx context.Context, target string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFileAtomic(target, content, 0o644)
}

var _ driven.PlaylistWriter = (*PlaylistFileWriter)(nil)
