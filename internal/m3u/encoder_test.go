package m3u

import (
	"strings"
	"testing"
	"time"

	"github.com/alorle/iptv-checker/internal/entry"
)

const roundTripPlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="one" group-title="News",One
http://example.com/one
#EXTINF:-1 tvg-id="two",Two
http://example.com/two
#EXTINF:-1,Three
https://example.com/three
#EXTINF:-1 tvg-country="ES",Four
http://example.com/four
`

func TestAssemble_RoundTripLiveEntries(t *testing.T) {
	entries := Parse([]byte(roundTripPlaylist), "rt.m3u")
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	// One and Three live, the rest dead or never validated
	entries[0] = entries[0].WithState(entry.StateLive)
	entries[1] = entries[1].WithState(entry.StateDead)
	entries[2] = entries[2].WithState(entry.StateLive)

	got := string(Assemble(entries, Options{}))
	want := "#EXTM3U\n" +
		"#EXTINF:-1 tvg-id=\"one\" group-title=\"News\",One\n" +
		"http://example.com/one\n" +
		"#EXTINF:-1,Three\n" +
		"https://example.com/three\n"

	if got != want {
		t.Errorf("Assemble() =\n%s\nwant\n%s", got, want)
	}

	// Parsing the output again yields the same two entries in the same order
	again := Parse([]byte(got), "rt.m3u")
	if len(again) != 2 || again[0].Name() != "One" || again[1].Name() != "Three" {
		t.Errorf("re-parse = %v, want [One Three]", entry.Names(again))
	}
}

func TestAssemble_NoLiveEntries(t *testing.T) {
	entries := Parse([]byte(roundTripPlaylist), "rt.m3u")

	got := string(Assemble(entries, Options{}))
	if got != "#EXTM3U\n" {
		t.Errorf("expected header only, got %q", got)
	}
}

func TestAssemble_UpdatedStamp(t *testing.T) {
	stamp := time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)
	e, _ := entry.NewEntry("X", "http://example.com/x", "#EXTINF:-1,X", "x.m3u")

	got := string(Assemble([]entry.Entry{e.WithState(entry.StateLive)}, Options{UpdatedAt: stamp}))

	if !strings.HasPrefix(got, "#EXTM3U\n#PLAYLIST:Updated 2026-03-04 05:06\n") {
		t.Errorf("missing stamp line, got %q", got)
	}
	if !strings.HasSuffix(got, "#EXTINF:-1,X\nhttp://example.com/x\n") {
		t.Errorf("missing entry lines, got %q", got)
	}
}

func TestEncoder_SkipsNonLive(t *testing.T) {
	a, _ := entry.NewEntry("A", "http://example.com/a", "#EXTINF:-1,A", "x.m3u")
	b, _ := entry.NewEntry("B", "http://example.com/b", "#EXTINF:-1,B", "x.m3u")

	enc := NewEncoder(Options{})
	enc.AddEntry(a)
	enc.AddEntry(b.WithState(entry.StateLive))

	if enc.Len() != 1 {
		t.Errorf("Len() = %d, want 1", enc.Len())
	}
}

func TestDirective(t *testing.T) {
	tests := []struct {
		name  string
		title string
		tags  *TVGTags
		want  string
	}{
		{name: "no tags", title: "La 1", tags: nil, want: `#EXTINF:-1,La 1`},
		{name: "name only", title: "La 1", tags: &TVGTags{Name: "La 1"}, want: `#EXTINF:-1 tvg-name="La 1",La 1`},
		{
			name:  "all tags",
			title: "Telemadrid",
			tags:  &TVGTags{ID: "tm.es", Name: "Telemadrid", GroupTitle: "Autonómicas"},
			want:  `#EXTINF:-1 tvg-id="tm.es" tvg-name="Telemadrid" group-title="Autonómicas",Telemadrid`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Directive(tt.title, tt.tags)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if name := DisplayName(got); name != tt.title {
				t.Errorf("expected display name %q, got %q", tt.title, name)
			}

			entries := Parse([]byte(got+"\nhttp://example.com/stream\n"), "d.m3u")
			if len(entries) != 1 || entries[0].Name() != tt.title {
				t.Errorf("synthesized directive did not parse back to %q: %v", tt.title, entry.Names(entries))
			}
		})
	}
}
