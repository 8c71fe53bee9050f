package driven

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alorle/iptv-checker/internal/port/driven"
)

const (
	// HTTP client timeout for downloading remote playlists
	defaultFetchTimeout = 30 * time.Second

	// Upper bound on a downloaded playlist
	maxPlaylistBytes = 64 << 20
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

// HTTPSource implements the SourceFetcher port by downloading playlists.
type HTTPSource struct {
	httpClient *http.Client
	userAgent  string
}

// NewHTTPSource creates a new HTTP-based playlist source.
func NewHTTPSource(timeout time.Duration, userAgent string) *HTTPSource {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPSource{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// Fetch downloads the playlist at location. Only a 200 response is accepted.
func (s *HTTPSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", location, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, location)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}

var _ driven.SourceFetcher = (*HTTPSource)(nil)
