package report

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

const (
	separator  = "━━━━━━━━━━━━━━━━━━━━━"
	timeLayout = "02/01/2006 15:04"
)

// RenderOptions caps how much of a report is displayed.
type RenderOptions struct {
	MaxSources int
	MaxAdded   int
	MaxRemoved int
}

// DefaultRenderOptions returns the display caps used for notifications.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		MaxSources: 10,
		MaxAdded:   10,
		MaxRemoved: 5,
	}
}

// Render formats the report as Telegram-flavoured Markdown.
func Render(r ChangeReport, opts RenderOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📺 *IPTV REPORT* - %s\n", r.GeneratedAt.Format(timeLayout))
	b.WriteString(separator + "\n\n")

	total := r.Total()
	delta := total - r.PreviousTotal()
	b.WriteString("📊 *SUMMARY*\n")
	fmt.Fprintf(&b, "• Total channels: *%d*\n", total)
	switch {
	case delta > 0:
		fmt.Fprintf(&b, "• 🟢 +%d new channels\n", delta)
	case delta < 0:
		fmt.Fprintf(&b, "• 🔴 %d channels down\n", delta)
	default:
		b.WriteString("• ⚪ No changes\n")
	}
	b.WriteString("\n")

	if !r.HasPrevious() {
		b.WriteString("📋 *PLAYLISTS*\n")
		shown, rest := capSources(r.Sources, opts.MaxSources)
		for _, s := range shown {
			fmt.Fprintf(&b, "• %s: %d channels%s\n", code(s.Source), s.CurrentCount, failedSuffix(s))
		}
		writeMore(&b, rest)
	} else {
		changed, unchanged := r.Split()
		if len(changed) > 0 {
			fmt.Fprintf(&b, "📋 *CHANGED* (%d)\n", len(changed))
			shown, rest := capSources(changed, opts.MaxSources)
			for _, s := range shown {
				writeSourceLine(&b, s)
				writeNames(&b, "➕", s.Added, opts.MaxAdded)
				writeNames(&b, "➖", s.Removed, opts.MaxRemoved)
			}
			writeMore(&b, rest)
		}
		if len(unchanged) > 0 {
			if len(changed) > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "📋 *UNCHANGED* (%d)\n", len(unchanged))
			shown, rest := capSources(unchanged, opts.MaxSources)
			for _, s := range shown {
				writeSourceLine(&b, s)
			}
			writeMore(&b, rest)
		}
	}

	b.WriteString("\n" + separator + "\n")
	b.WriteString("🤖 Automatic update")
	return b.String()
}

func writeSourceLine(b *strings.Builder, s SourceChange) {
	delta := s.Delta()
	emoji, text := "⚪", "="
	switch {
	case delta > 0:
		emoji, text = "🟢", fmt.Sprintf("+%d", delta)
	case delta < 0:
		emoji, text = "🔴", fmt.Sprintf("%d", delta)
	case s.Changed():
		emoji, text = "🟡", "±0"
	}
	fmt.Fprintf(b, "%s %s: %d (%s)%s\n", emoji, code(s.Source), s.CurrentCount, text, failedSuffix(s))
}

func writeNames(b *strings.Builder, marker string, names []string, limit int) {
	if len(names) == 0 {
		return
	}
	shown := names
	if limit > 0 && len(names) > limit {
		shown = names[:limit]
	}
	quoted := make([]string, len(shown))
	for i, n := range shown {
		quoted[i] = code(n)
	}
	line := "   " + marker + " " + strings.Join(quoted, ", ")
	if extra := len(names) - len(shown); extra > 0 {
		line += fmt.Sprintf(" +%d more", extra)
	}
	b.WriteString(line + "\n")
}

func capSources(sources []SourceChange, limit int) ([]SourceChange, int) {
	if limit <= 0 || len(sources) <= limit {
		return sources, 0
	}
	return sources[:limit], len(sources) - limit
}

func writeMore(b *strings.Builder, rest int) {
	if rest > 0 {
		fmt.Fprintf(b, "… +%d more\n", rest)
	}
}

func failedSuffix(s SourceChange) string {
	if s.Failed {
		return " ⚠️ unavailable"
	}
	return ""
}

// code wraps text in an inline code span. Backquotes inside would close the
// span early, so they are replaced.
func code(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "'") + "`"
}

// PlainText strips Markdown emphasis and code markers.
func PlainText(markdown string) string {
	return strings.NewReplacer("*", "", "`", "").Replace(markdown)
}

// Split breaks text into chunks of at most limit UTF-16 code units, the unit
// chat APIs count message length in, cutting on line boundaries where
// possible. A single line longer than limit is hard-split.
func Split(text string, limit int) []string {
	if limit <= 0 || utf16Len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if chunk := strings.TrimRight(cur.String(), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		cur.Reset()
		curLen = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf16Len(line)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			var head string
			head, line = cutUTF16(line, limit)
			chunks = append(chunks, head)
			n = utf16Len(line)
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return chunks
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// cutUTF16 splits s after at most limit code units, never inside a rune.
// At least one rune is taken so the cut always makes progress.
func cutUTF16(s string, limit int) (string, string) {
	used := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if used+w > limit && i > 0 {
			return s[:i], s[i:]
		}
		used += w
	}
	return s, ""
}
