package m3u

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/alorle/iptv-checker/internal/entry"
)

const (
	// HeaderTag opens every extended M3U document
	HeaderTag = "#EXTM3U"
	// DirectiveTag marks the metadata line that precedes a URL line
	DirectiveTag = "#EXTINF"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse extracts entries from extended M3U text, in document order.
//
// Each entry comes from an #EXTINF line followed, possibly after other
// comment lines, by one URL line. An #EXTINF line that is not followed by a
// URL before the next #EXTINF or the end of input yields nothing, and so does
// an entry whose URL is not http(s). Parse never fails; malformed input only
// produces fewer entries.
func Parse(content []byte, sourceFile string) []entry.Entry {
	content = bytes.TrimPrefix(content, utf8BOM)

	var entries []entry.Entry
	var pending string
	hasPending := false

	// Lines have no length limit: directives may embed data URIs.
	reader := bufio.NewReader(bytes.NewReader(content))

	for {
		raw, err := reader.ReadString('\n')
		if raw == "" && err != nil {
			// bytes.Reader only fails with io.EOF
			break
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, DirectiveTag) {
			pending = line
			hasPending = true
			continue
		}

		if strings.HasPrefix(line, "#") {
			// #EXTM3U, #EXTVLCOPT, #EXTGRP and friends
			continue
		}

		if !hasPending {
			continue
		}
		hasPending = false

		e, err := entry.NewEntry(DisplayName(pending), line, pending, sourceFile)
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}

	return entries
}

// DisplayName returns the channel name of an #EXTINF line: the text after the
// comma that closes the duration and attribute list. Commas inside quoted
// attribute values are skipped. Returns "" when the line has no such comma.
func DisplayName(directive string) string {
	inQuotes := false
	for i, r := range directive {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				return strings.TrimSpace(directive[i+1:])
			}
		}
	}
	return ""
}
