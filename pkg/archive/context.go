package archive

import (
	"fmt"
	"time"

	"tweetarchiver/pkg/twitter"
)

// PostContext carries the tweet-level facts the packager needs beyond the
// media descriptors themselves. Derived once per archival operation and
// discarded afterwards.
type PostContext struct {
	AuthorHandle string
	TweetID      string
	// TweetURL is the canonical permalink, normalized to x.com with any
	// media index segments stripped
	TweetURL string
	// Caption is the tweet text, possibly empty
	Caption string
	// PostedAt is the tweet timestamp; archival time is substituted when
	// the source had none
	PostedAt time.Time
}

// NewPostContext builds a PostContext from a status link. The link must
// contain a {handle}/status/{id} pattern; callers are expected to have
// validated their input before archival starts, so a mismatch is an error,
// not a recoverable condition.
func NewPostContext(link, caption string, postedAt time.Time) (PostContext, error) {
	handle, tweetID, err := twitter.ParseStatusURL(link)
	if err != nil {
		return PostContext{}, fmt.Errorf("malformed post context: %w", err)
	}

	if postedAt.IsZero() {
		postedAt = time.Now()
	}

	return PostContext{
		AuthorHandle: handle,
		TweetID:      tweetID,
		TweetURL:     twitter.CanonicalTweetURL(handle, tweetID),
		Caption:      caption,
		PostedAt:     postedAt,
	}, nil
}

// ArchiveName returns the bundle filename
func (c PostContext) ArchiveName() string {
	return fmt.Sprintf("%s_%s.zip", c.AuthorHandle, c.TweetID)
}

// ShortcutName returns the .url shortcut entry filename
func (c PostContext) ShortcutName() string {
	return fmt.Sprintf("%s_%s.url", c.AuthorHandle, c.TweetID)
}

// MediaName returns the archive entry name for the media item at the given
// 1-based source index
func (c PostContext) MediaName(index int, ext string) string {
	return fmt.Sprintf("%s_%s_%d.%s", c.AuthorHandle, c.TweetID, index, ext)
}
