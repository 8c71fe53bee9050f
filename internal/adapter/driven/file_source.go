package driven

import (
	"context"
	"fmt"
	"os"

	"github.com/alorle/iptv-checker/internal/port/driven"
)

// FileSource implements the SourceFetcher port for playlists on local disk.
type FileSource struct{}

func NewFileSource() *FileSource {
	return &FileSource{}
}

func (s *FileSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}
	return data, nil
}

var _ driven.SourceFetcher = (*FileSource)(nil)
