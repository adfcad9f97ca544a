package twitter

import (
	"tweetarchiver/pkg/logger"
)

// MP4ContentType is the single archival-compatible container format for
// motion media. Variants in other formats (HLS playlists etc.) are ignored.
const MP4ContentType = "video/mp4"

// origSizeSuffix requests the original-size rendition of a photo instead of
// the default thumbnail
const origSizeSuffix = "?name=orig"

// Kind identifies the media descriptor variant
type Kind int

const (
	// KindPhoto is a still image
	KindPhoto Kind = iota
	// KindVideo is a true video with multiple bitrate variants
	KindVideo
	// KindAnimatedGIF is a silent looping video
	KindAnimatedGIF
)

func (k Kind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	case KindAnimatedGIF:
		return "animated_gif"
	default:
		return "unknown"
	}
}

// Media is a resolved media descriptor. Bitrate and ContentType are only set
// for motion media (video and animated_gif). Immutable once produced.
type Media struct {
	Kind        Kind
	URL         string
	Bitrate     int
	ContentType string
}

// IsMotion reports whether the descriptor refers to motion media
func (m Media) IsMotion() bool {
	return m.Kind == KindVideo || m.Kind == KindAnimatedGIF
}

// Ext returns the archive file extension for the descriptor
func (m Media) Ext() string {
	if m.IsMotion() {
		return "mp4"
	}
	return "jpg"
}

// ResolveMedia extracts the media descriptors for the given tweet id from a
// TweetDetail response. It never fails: any structural mismatch resolves to
// an empty slice with the cause logged. Descriptor order matches the order of
// the media entities in the response, minus skipped items.
func ResolveMedia(resp *TweetDetailResponse, tweetID string, log logger.Logger) []Media {
	if log == nil {
		log = logger.GetLogger()
	}

	result := resp.FindTweetResult(tweetID)
	if result == nil {
		log.WarnWithFields("tweet result not found in response", map[string]interface{}{
			"tweet_id": tweetID,
		})
		return nil
	}

	items := result.MediaItems()
	if len(items) == 0 {
		log.DebugWithFields("tweet has no media", map[string]interface{}{
			"tweet_id": tweetID,
		})
		return nil
	}

	media := make([]Media, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case "photo":
			media = append(media, Media{
				Kind: KindPhoto,
				URL:  item.MediaURLHTTPS + origSizeSuffix,
			})

		case "video":
			variant, ok := item.highestBitrateMP4()
			if !ok {
				// No archival-compatible variant: the item is
				// treated as having no video, not as an error.
				log.WarnWithFields("video has no mp4 variant", map[string]interface{}{
					"tweet_id": tweetID,
				})
				continue
			}
			media = append(media, Media{
				Kind:        KindVideo,
				URL:         variant.URL,
				Bitrate:     variant.Bitrate,
				ContentType: variant.ContentType,
			})

		case "animated_gif":
			// Animated gifs typically carry a single variant, so the
			// first mp4 match wins without bitrate comparison.
			variant, ok := item.firstMP4()
			if !ok {
				log.WarnWithFields("animated gif has no mp4 variant", map[string]interface{}{
					"tweet_id": tweetID,
				})
				continue
			}
			media = append(media, Media{
				Kind:        KindAnimatedGIF,
				URL:         variant.URL,
				Bitrate:     variant.Bitrate,
				ContentType: variant.ContentType,
			})

		default:
			// Unknown kinds are skipped so future upstream media
			// types don't break resolution.
			log.DebugWithFields("skipping unsupported media type", map[string]interface{}{
				"tweet_id":   tweetID,
				"media_type": item.Type,
			})
		}
	}

	return media
}

// highestBitrateMP4 selects the mp4 variant with the maximum bitrate. The
// first maximum encountered wins ties.
func (m MediaItem) highestBitrateMP4() (VideoVariant, bool) {
	if m.VideoInfo == nil {
		return VideoVariant{}, false
	}

	var best VideoVariant
	found := false
	for _, variant := range m.VideoInfo.Variants {
		if variant.ContentType != MP4ContentType {
			continue
		}
		if !found || variant.Bitrate > best.Bitrate {
			best = variant
			found = true
		}
	}

	return best, found
}

// firstMP4 returns the first mp4 variant in source order
func (m MediaItem) firstMP4() (VideoVariant, bool) {
	if m.VideoInfo == nil {
		return VideoVariant{}, false
	}

	for _, variant := range m.VideoInfo.Variants {
		if variant.ContentType == MP4ContentType {
			return variant, true
		}
	}

	return VideoVariant{}, false
}
