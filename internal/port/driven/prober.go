package driven

import "context"

// Prober defines the interface for the network probes used to decide whether
// a stream URL is live.
// This is a driven port that will be implemented by concrete adapters (e.g., HTTP client).
type Prober interface {
	// Head performs a lightweight existence probe, following redirects.
	Head(ctx context.Context, url string) (ProbeResponse, error)

	// PartialGet requests only the first bytes of the resource.
	PartialGet(ctx context.Context, url string) (ProbeResponse, error)
}

// ProbeResponse is what a probe observed from the remote server.
type ProbeResponse struct {
	StatusCode  int
	ContentType string
}
