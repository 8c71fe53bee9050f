package m3u

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/alorle/iptv-checker/internal/entry"
)

// Options tunes the assembled document.
type Options struct {
	// UpdatedAt, when non-zero, adds a #PLAYLIST line stamped with this time
	UpdatedAt time.Time
}

type encoder struct {
	opts  Options
	items []entry.Entry
}

// NewEncoder returns an encoder that writes only live entries.
func NewEncoder(opts Options) *encoder {
	return &encoder{opts: opts, items: []entry.Entry{}}
}

// AddEntry queues an entry; entries that are not live are skipped.
func (p *encoder) AddEntry(e entry.Entry) {
	if !e.IsLive() {
		return
	}
	p.items = append(p.items, e)
}

// Len returns the number of entries that will be written.
func (p *encoder) Len() int {
	return len(p.items)
}

func (p *encoder) Encode(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n", HeaderTag); err != nil {
		return err
	}

	if !p.opts.UpdatedAt.IsZero() {
		if _, err := fmt.Fprintf(w, "#PLAYLIST:Updated %s\n", p.opts.UpdatedAt.Format("2006-01-02 15:04")); err != nil {
			return err
		}
	}

	for _, item := range p.items {
		if _, err := fmt.Fprintf(w, "%s\n%s\n", item.RawLine(), item.URL()); err != nil {
			return err
		}
	}

	return nil
}

// Assemble renders the live entries as an extended M3U document. Each
// surviving entry contributes its original directive line and its URL line,
// in input order.
func Assemble(entries []entry.Entry, opts Options) []byte {
	enc := NewEncoder(opts)
	for _, e := range entries {
		enc.AddEntry(e)
	}

	var buf bytes.Buffer
	// bytes.Buffer writes cannot fail
	_ = enc.Encode(&buf)
	return buf.Bytes()
}
