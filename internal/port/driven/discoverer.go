package driven

import "context"

// Discoverer defines the interface for scraping stream links from a web page.
type Discoverer interface {
	// Discover returns the channels found on site. Name may be empty.
	Discover(ctx context.Context, site string) ([]Discovered, error)
}

// Discovered is a stream link found by a Discoverer.
type Discovered struct {
	Name string
	URL  string
}
