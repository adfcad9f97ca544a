package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostContext(t *testing.T) {
	postedAt := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	t.Run("from canonical link", func(t *testing.T) {
		ctx, err := NewPostContext("https://x.com/alice/status/123", "hello", postedAt)
		require.NoError(t, err)

		assert.Equal(t, "alice", ctx.AuthorHandle)
		assert.Equal(t, "123", ctx.TweetID)
		assert.Equal(t, "https://x.com/alice/status/123", ctx.TweetURL)
		assert.Equal(t, "hello", ctx.Caption)
		assert.Equal(t, postedAt, ctx.PostedAt)
	})

	t.Run("normalizes twitter.com and media segments", func(t *testing.T) {
		ctx, err := NewPostContext("https://twitter.com/bob/status/456/photo/2", "", postedAt)
		require.NoError(t, err)

		assert.Equal(t, "https://x.com/bob/status/456", ctx.TweetURL)
	})

	t.Run("zero timestamp falls back to now", func(t *testing.T) {
		before := time.Now()
		ctx, err := NewPostContext("https://x.com/alice/status/123", "", time.Time{})
		require.NoError(t, err)

		assert.False(t, ctx.PostedAt.IsZero())
		assert.True(t, !ctx.PostedAt.Before(before))
	})

	t.Run("malformed link is an error", func(t *testing.T) {
		_, err := NewPostContext("https://x.com/alice", "", postedAt)
		assert.Error(t, err)
	})
}

func TestPostContextNames(t *testing.T) {
	ctx := PostContext{AuthorHandle: "alice", TweetID: "123"}

	assert.Equal(t, "alice_123.zip", ctx.ArchiveName())
	assert.Equal(t, "alice_123.url", ctx.ShortcutName())
	assert.Equal(t, "alice_123_1.jpg", ctx.MediaName(1, "jpg"))
	assert.Equal(t, "alice_123_3.mp4", ctx.MediaName(3, "mp4"))
}
