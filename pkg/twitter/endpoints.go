package twitter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
)

const (
	// BaseURL is the GraphQL TweetDetail endpoint. The query hash in the
	// path is tied to the schema version the parameter sets below target.
	BaseURL = "https://x.com/i/api/graphql/QuBlQ6SxNAQCt6-kBiCXCQ/TweetDetail"

	// BearerToken is the fixed public app token. It identifies the web
	// client, not a user; user context comes from the ct0 CSRF cookie.
	BearerToken = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"
)

// featuresJSON and fieldTogglesJSON are contract constants. The endpoint
// rejects requests missing required flags, so the full sets are reproduced
// verbatim and must not be pruned even where flags look unused.
const featuresJSON = `{"rweb_tipjar_consumption_enabled":true,` +
	`"responsive_web_graphql_exclude_directive_enabled":true,` +
	`"verified_phone_label_enabled":false,` +
	`"creator_subscriptions_tweet_preview_api_enabled":true,` +
	`"responsive_web_graphql_timeline_navigation_enabled":true,` +
	`"responsive_web_graphql_skip_user_profile_image_extensions_enabled":false,` +
	`"communities_web_enable_tweet_community_results_fetch":true,` +
	`"c9s_tweet_anatomy_moderator_badge_enabled":true,` +
	`"articles_preview_enabled":true,` +
	`"responsive_web_edit_tweet_api_enabled":true,` +
	`"graphql_is_translatable_rweb_tweet_is_translatable_enabled":true,` +
	`"view_counts_everywhere_api_enabled":true,` +
	`"longform_notetweets_consumption_enabled":true,` +
	`"responsive_web_twitter_article_tweet_consumption_enabled":true,` +
	`"tweet_awards_web_tipping_enabled":false,` +
	`"creator_subscriptions_quote_tweet_preview_enabled":false,` +
	`"freedom_of_speech_not_reach_fetch_enabled":true,` +
	`"standardized_nudges_misinfo":true,` +
	`"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled":true,` +
	`"rweb_video_timestamps_enabled":true,` +
	`"longform_notetweets_rich_text_read_enabled":true,` +
	`"longform_notetweets_inline_media_enabled":true,` +
	`"responsive_web_enhance_cards_enabled":false}`

const fieldTogglesJSON = `{"withArticleRichContentState":true,` +
	`"withArticlePlainText":false,` +
	`"withGrokAnalyze":false,` +
	`"withDisallowedReplyControls":false}`

// tweetDetailVariables is the variables parameter for a TweetDetail request.
// Everything except the focal tweet id is fixed feature negotiation.
type tweetDetailVariables struct {
	FocalTweetID                           string `json:"focalTweetId"`
	WithRuxInjections                      bool   `json:"with_rux_injections"`
	RankingMode                            string `json:"rankingMode"`
	IncludePromotedContent                 bool   `json:"includePromotedContent"`
	WithCommunity                          bool   `json:"withCommunity"`
	WithQuickPromoteEligibilityTweetFields bool   `json:"withQuickPromoteEligibilityTweetFields"`
	WithBirdwatchNotes                     bool   `json:"withBirdwatchNotes"`
	WithVoice                              bool   `json:"withVoice"`
}

// Cookies holds the ambient cookie values the request builder consumes
type Cookies struct {
	// Language is the lang cookie value, default "en"
	Language string
	// CSRFToken is the ct0 cookie value, default empty. An empty token
	// typically makes the upstream call fail with an auth error.
	CSRFToken string
}

// TweetDetailURL constructs the TweetDetail request URL for a tweet id
func TweetDetailURL(tweetID string) string {
	return tweetDetailURL(BaseURL, tweetID)
}

func tweetDetailURL(base, tweetID string) string {
	variables, _ := json.Marshal(tweetDetailVariables{
		FocalTweetID:                           tweetID,
		WithRuxInjections:                      false,
		RankingMode:                            "Relevance",
		IncludePromotedContent:                 true,
		WithCommunity:                          true,
		WithQuickPromoteEligibilityTweetFields: true,
		WithBirdwatchNotes:                     true,
		WithVoice:                              true,
	})

	params := url.Values{}
	params.Set("variables", string(variables))
	params.Set("features", featuresJSON)
	params.Set("fieldToggles", fieldTogglesJSON)

	return fmt.Sprintf("%s?%s", base, params.Encode())
}

// RequestHeaders constructs the headers required by the TweetDetail endpoint
func RequestHeaders(cookies Cookies) map[string]string {
	lang := cookies.Language
	if lang == "" {
		lang = "en"
	}

	return map[string]string{
		"authorization":             "Bearer " + BearerToken,
		"x-twitter-active-user":     "yes",
		"x-twitter-client-language": lang,
		"x-csrf-token":              cookies.CSRFToken,
	}
}

// statusLinkPattern matches tweet permalinks on both domains, including
// links with trailing segments such as /photo/1.
var statusLinkPattern = regexp.MustCompile(`https?://(?:x\.com|twitter\.com)/([^/]+)/status/(\d+)`)

// ParseStatusURL extracts the author handle and tweet id from a status link
func ParseStatusURL(link string) (handle, tweetID string, err error) {
	matches := statusLinkPattern.FindStringSubmatch(link)
	if matches == nil {
		return "", "", fmt.Errorf("no status link found in %q", link)
	}
	return matches[1], matches[2], nil
}

// CanonicalTweetURL returns the normalized permalink for a tweet, with any
// media index segments stripped
func CanonicalTweetURL(handle, tweetID string) string {
	return fmt.Sprintf("https://x.com/%s/status/%s", handle, tweetID)
}

// IsValidTweetID checks that an id is a non-empty numeric string. Malformed
// ids that pass this check are rejected upstream as an HTTP error.
func IsValidTweetID(tweetID string) bool {
	if tweetID == "" {
		return false
	}
	for _, char := range tweetID {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}
