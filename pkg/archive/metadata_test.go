package archive

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testContext(caption string) PostContext {
	return PostContext{
		AuthorHandle: "alice",
		TweetID:      "123",
		TweetURL:     "https://x.com/alice/status/123",
		Caption:      caption,
		PostedAt:     time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local),
	}
}

func TestMetadataRender(t *testing.T) {
	m := NewMetadata(testContext("a fine tweet"))
	m.AddMediaURL("https://pbs.twimg.com/media/one.jpg?name=orig")
	m.AddMediaURL("https://video.twimg.com/two.mp4")

	lines := strings.Split(m.Render(), "\n")

	assert.Equal(t, []string{
		"https://x.com/alice/status/123",
		"a fine tweet",
		"@alice",
		"2024-03-15 10:30:00",
		"https://pbs.twimg.com/media/one.jpg?name=orig",
		"https://video.twimg.com/two.mp4",
	}, lines)
}

func TestMetadataRenderSkipsEmptyCaption(t *testing.T) {
	m := NewMetadata(testContext(""))
	m.AddMediaURL("https://pbs.twimg.com/media/one.jpg?name=orig")

	lines := strings.Split(m.Render(), "\n")

	assert.Equal(t, []string{
		"https://x.com/alice/status/123",
		"@alice",
		"2024-03-15 10:30:00",
		"https://pbs.twimg.com/media/one.jpg?name=orig",
	}, lines)
}

func TestMetadataRenderNoTrailingNewline(t *testing.T) {
	m := NewMetadata(testContext("caption"))

	rendered := m.Render()
	assert.False(t, strings.HasSuffix(rendered, "\n"))
	assert.True(t, strings.HasSuffix(rendered, "2024-03-15 10:30:00"))
}

func TestMetadataURLOrderPreserved(t *testing.T) {
	m := NewMetadata(testContext(""))
	urls := []string{"https://a.example/1", "https://a.example/2", "https://a.example/3"}
	for _, u := range urls {
		m.AddMediaURL(u)
	}

	lines := strings.Split(m.Render(), "\n")
	assert.Equal(t, urls, lines[len(lines)-3:])
}
