package m3u

import (
	"fmt"
	"strings"
)

// TVGTags holds the attributes written into a synthesized #EXTINF line.
type TVGTags struct {
	ID         string
	Name       string
	GroupTitle string
}

func (t *TVGTags) encode(sb *strings.Builder) {
	if t.ID != "" {
		fmt.Fprintf(sb, " tvg-id=\"%s\"", t.ID)
	}
	if t.Name != "" {
		fmt.Fprintf(sb, " tvg-name=\"%s\"", t.Name)
	}
	if t.GroupTitle != "" {
		fmt.Fprintf(sb, " group-title=\"%s\"", t.GroupTitle)
	}
}

// Directive builds an #EXTINF line for entries that did not come from a
// playlist document, e.g. discovered streams.
func Directive(title string, tags *TVGTags) string {
	var sb strings.Builder
	sb.WriteString(DirectiveTag)
	sb.WriteString(":-1")
	if tags != nil {
		tags.encode(&sb)
	}
	sb.WriteString(",")
	sb.WriteString(title)
	return sb.String()
}
