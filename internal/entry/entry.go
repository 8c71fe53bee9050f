package entry

import (
	"errors"
	"regexp"
	"strings"
)

// Domain errors
var (
	ErrEmptyURL          = errors.New("entry url cannot be empty")
	ErrUnsupportedScheme = errors.New("entry url must use http or https")
)

// DefaultName is used when a directive line carries no display name.
const DefaultName = "Unnamed channel"

// State is the liveness outcome of an entry.
type State int

const (
	// StateUnknown means the entry has not been validated yet
	StateUnknown State = iota
	// StateLive means one of the probes reached the stream
	StateLive
	// StateDead means every probe failed
	StateDead
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateLive:
		return "LIVE"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

var attributeRegex = regexp.MustCompile(`([A-Za-z0-9_-]+)="([^"]*)"`)

// Entry is one playlist record: a display name, its delivery URL and the
// directive line it was read from.
type Entry struct {
	name       string
	url        string
	rawLine    string
	state      State
	sourceFile string
}

// NewEntry creates an Entry after checking that the URL is an http(s) URL.
// An empty name is replaced by DefaultName so an entry is never nameless.
func NewEntry(name, url, rawLine, sourceFile string) (Entry, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Entry{}, ErrEmptyURL
	}
	if !HasSupportedScheme(url) {
		return Entry{}, ErrUnsupportedScheme
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}

	return Entry{
		name:       name,
		url:        url,
		rawLine:    rawLine,
		state:      StateUnknown,
		sourceFile: sourceFile,
	}, nil
}

// HasSupportedScheme reports whether url starts with http:// or https://,
// ignoring case.
func HasSupportedScheme(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (e Entry) Name() string       { return e.name }
func (e Entry) URL() string        { return e.url }
func (e Entry) RawLine() string    { return e.rawLine }
func (e Entry) State() State       { return e.state }
func (e Entry) SourceFile() string { return e.sourceFile }
func (e Entry) IsLive() bool       { return e.state == StateLive }

// WithState returns a copy of the entry carrying the given liveness state.
func (e Entry) WithState(s State) Entry {
	e.state = s
	return e
}

// Attributes extracts the key="value" pairs of the directive line.
// Keys are lower-cased; the first occurrence of a key wins.
func (e Entry) Attributes() map[string]string {
	attrs := make(map[string]string)
	for _, m := range attributeRegex.FindAllStringSubmatch(e.rawLine, -1) {
		key := strings.ToLower(m[1])
		if _, exists := attrs[key]; !exists {
			attrs[key] = m[2]
		}
	}
	return attrs
}

// Attribute returns a single directive attribute, or "" when absent.
func (e Entry) Attribute(key string) string {
	return e.Attributes()[strings.ToLower(key)]
}

// Names returns the display names of the given entries, in order.
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}
