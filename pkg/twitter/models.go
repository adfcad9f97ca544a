package twitter

import "fmt"

// TweetDetailResponse represents the top-level response from the TweetDetail
// endpoint. The target tweet is nested several optional levels deep, so every
// intermediate node is a pointer and traversal goes through the nil-tolerant
// accessors below rather than direct field chains.
type TweetDetailResponse struct {
	Data *ResponseData `json:"data"`
}

// ResponseData wraps the conversation thread in the response
type ResponseData struct {
	ThreadedConversation *ThreadedConversation `json:"threaded_conversation_with_injections_v2"`
}

// ThreadedConversation contains the timeline instructions
type ThreadedConversation struct {
	Instructions []Instruction `json:"instructions"`
}

// Instruction is a generic timeline instruction carrying entries
type Instruction struct {
	Type    string  `json:"type"`
	Entries []Entry `json:"entries"`
}

// Entry is a single timeline entry, identified by a synthetic id of the
// form "tweet-{id}" for tweet entries
type Entry struct {
	EntryID string        `json:"entryId"`
	Content *EntryContent `json:"content"`
}

// EntryContent wraps the entry's item content
type EntryContent struct {
	ItemContent *ItemContent `json:"itemContent"`
}

// ItemContent wraps the tweet results
type ItemContent struct {
	TweetResults *TweetResults `json:"tweet_results"`
}

// TweetResults wraps the tweet result node
type TweetResults struct {
	Result *TweetResult `json:"result"`
}

// TweetResult is the resolved tweet node
type TweetResult struct {
	Legacy *LegacyTweet `json:"legacy"`
}

// LegacyTweet carries the legacy-format tweet payload
type LegacyTweet struct {
	FullText  string         `json:"full_text"`
	CreatedAt string         `json:"created_at"`
	Entities  *TweetEntities `json:"entities"`
}

// TweetEntities holds the attached media list
type TweetEntities struct {
	Media []MediaItem `json:"media"`
}

// MediaItem is a single attached media entity
type MediaItem struct {
	Type          string     `json:"type"`
	MediaURLHTTPS string     `json:"media_url_https"`
	VideoInfo     *VideoInfo `json:"video_info"`
}

// VideoInfo holds the encoded variants for video and animated_gif media
type VideoInfo struct {
	Variants []VideoVariant `json:"variants"`
}

// VideoVariant is a single encoded rendition of motion media
type VideoVariant struct {
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// TweetEntryID returns the synthetic entry id used for a tweet in the
// conversation timeline
func TweetEntryID(tweetID string) string {
	return fmt.Sprintf("tweet-%s", tweetID)
}

// FindTweetResult locates the result node for the given tweet id anywhere in
// the instruction list. Returns nil if any step of the path is absent.
func (r *TweetDetailResponse) FindTweetResult(tweetID string) *TweetResult {
	if r == nil || r.Data == nil || r.Data.ThreadedConversation == nil {
		return nil
	}

	entryID := TweetEntryID(tweetID)
	for _, instruction := range r.Data.ThreadedConversation.Instructions {
		for _, entry := range instruction.Entries {
			if entry.EntryID == entryID {
				return entry.tweetResult()
			}
		}
	}

	return nil
}

// tweetResult unwraps the entry's tweet result node, nil-safe at every step
func (e Entry) tweetResult() *TweetResult {
	if e.Content == nil || e.Content.ItemContent == nil || e.Content.ItemContent.TweetResults == nil {
		return nil
	}
	return e.Content.ItemContent.TweetResults.Result
}

// MediaItems returns the tweet's attached media list, or nil when the tweet
// carries none
func (t *TweetResult) MediaItems() []MediaItem {
	if t == nil || t.Legacy == nil || t.Legacy.Entities == nil {
		return nil
	}
	return t.Legacy.Entities.Media
}
