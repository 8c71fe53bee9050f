package driven

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alorle/iptv-checker/internal/port/driven"
)

const defaultDiscoverTimeout = 60 * time.Second

// DiscoverOptions selects channel elements on a web page.
type DiscoverOptions struct {
	// Selector is the CSS selector matching one element per channel
	Selector string
	// URLAttrs are tried in order for the stream link
	URLAttrs []string
	// NameAttr holds the channel name; the element text is used when empty
	NameAttr string
}

// HTMLDiscoverer implements the Discoverer port by scraping a static HTML
// page with CSS selectors.
type HTMLDiscoverer struct {
	httpClient *http.Client
	userAgent  string
	opts       DiscoverOptions
}

// NewHTMLDiscoverer creates a discoverer for the given selector options.
func NewHTMLDiscoverer(opts DiscoverOptions, userAgent string) *HTMLDiscoverer {
	if len(opts.URLAttrs) == 0 {
		opts.URLAttrs = []string{"href", "data-url", "data-src", "src"}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTMLDiscoverer{
		httpClient: &http.Client{Timeout: defaultDiscoverTimeout},
		userAgent:  userAgent,
		opts:       opts,
	}
}

// Discover fetches site and returns one entry per matched element that
// carries a usable link.
func (d *HTMLDiscoverer) Discover(ctx context.Context, site string) ([]driven.Discovered, error) {
	base, err := url.Parse(site)
	if err != nil {
		return nil, fmt.Errorf("invalid site %q: %w", site, err)
	}

	doc, err := d.fetchDocument(ctx, site)
	if err != nil {
		return nil, err
	}

	var found []driven.Discovered
	doc.Find(d.opts.Selector).Each(func(i int, s *goquery.Selection) {
		link := d.link(s, base)
		if link == "" {
			return
		}
		found = append(found, driven.Discovered{
			Name: d.name(s),
			URL:  link,
		})
	})
	return found, nil
}

func (d *HTMLDiscoverer) fetchDocument(ctx context.Context, site string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, site, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, site)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (d *HTMLDiscoverer) link(s *goquery.Selection, base *url.URL) string {
	for _, attr := range d.opts.URLAttrs {
		raw, ok := s.Attr(attr)
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" || raw == "about:blank" || strings.HasPrefix(raw, "#") {
			continue
		}
		ref, err := url.Parse(raw)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref)
		// A link back to the page itself is not a stream
		if resolved.String() == base.String() {
			continue
		}
		return resolved.String()
	}
	return ""
}

// name turns identifiers such as "la_1_hd" into "La 1 Hd".
func (d *HTMLDiscoverer) name(s *goquery.Selection) string {
	var raw string
	if d.opts.NameAttr != "" {
		raw, _ = s.Attr(d.opts.NameAttr)
	} else {
		raw = s.Text()
	}
	raw = strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(raw)), " ")
	if raw == "" {
		return ""
	}
	return cases.Title(language.Spanish).String(raw)
}

var _ driven.Discoverer = (*HTMLDiscoverer)(nil)
