package pipeline

import (
	"tweetarchiver/pkg/archive"
	"tweetarchiver/pkg/twitter"
)

// TweetClient defines the upstream API operations the pipeline depends on
type TweetClient interface {
	FetchTweetDetail(tweetID string) (*twitter.TweetDetailResponse, error)
	DownloadMedia(url string) ([]byte, error)
}

// Packager defines the archival operation the pipeline depends on
type Packager interface {
	Archive(context archive.PostContext, media []twitter.Media) (*archive.Result, error)
}
