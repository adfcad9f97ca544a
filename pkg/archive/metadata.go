package archive

import (
	"strings"
)

// Metadata accumulates the human-readable sidecar written into each bundle
// as metadata.txt: the canonical permalink, the caption when present, the
// author handle, the localized post timestamp, then one line per archived
// media item's source URL in entry order.
type Metadata struct {
	context   PostContext
	mediaURLs []string
}

// NewMetadata creates a sidecar builder for one archival operation
func NewMetadata(context PostContext) *Metadata {
	return &Metadata{context: context}
}

// AddMediaURL appends the source URL of a successfully archived media item
func (m *Metadata) AddMediaURL(url string) {
	m.mediaURLs = append(m.mediaURLs, url)
}

// Render produces the sidecar text, without a trailing newline
func (m *Metadata) Render() string {
	var b strings.Builder

	b.WriteString(m.context.TweetURL)
	b.WriteString("\n")
	if m.context.Caption != "" {
		b.WriteString(m.context.Caption)
		b.WriteString("\n")
	}
	b.WriteString("@")
	b.WriteString(m.context.AuthorHandle)
	b.WriteString("\n")
	b.WriteString(m.context.PostedAt.Local().Format("2006-01-02 15:04:05"))
	b.WriteString("\n")

	for _, url := range m.mediaURLs {
		b.WriteString(url)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
