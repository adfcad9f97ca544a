// Package pipeline wires the resolution and archival stages together: tweet
// id in, saved bundle (or a logged reason for the no-op) out.
package pipeline

import (
	"fmt"
	"time"

	"tweetarchiver/pkg/archive"
	"tweetarchiver/pkg/config"
	"tweetarchiver/pkg/logger"
	"tweetarchiver/pkg/processed"
	"tweetarchiver/pkg/ratelimit"
	"tweetarchiver/pkg/retry"
	"tweetarchiver/pkg/twitter"
)

// Outcome reports what one pipeline run did
type Outcome struct {
	TweetID string
	// Archived is true when a bundle was produced and saved, even if some
	// media items were dropped along the way
	Archived bool
	// Reason explains a no-op run ("no media found" etc.)
	Reason string
	// AlreadyProcessed is true when the tweet had been archived in an
	// earlier session. Informational; it does not block re-archival.
	AlreadyProcessed bool
	Result           *archive.Result
}

// Pipeline orchestrates the resolve -> archive -> mark-processed flow
type Pipeline struct {
	client   TweetClient
	packager Packager
	store    processed.Store
	limiter  ratelimit.Limiter
	logger   logger.Logger
}

// New creates a Pipeline with all collaborators built from configuration
func New(cfg *config.Config) (*Pipeline, error) {
	log := logger.GetLogger()

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Retry.MaxAttempts
	retryCfg.Backoff = &retry.ConstantBackoff{Delay: cfg.Retry.Delay}
	retryCfg.Logger = log

	cookies := twitter.Cookies{
		Language:  cfg.Twitter.Language,
		CSRFToken: cfg.Twitter.CSRFToken,
	}

	client := twitter.NewClient(cfg.Download.Timeout, cookies, retryCfg, log)
	if cfg.Twitter.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Twitter.UserAgent)
	}

	saver, err := archive.NewFileSaver(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create saver: %w", err)
	}

	store, err := processed.NewFileStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create processed store: %w", err)
	}

	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)
	}

	return &Pipeline{
		client:   client,
		packager: archive.New(client, saver, cfg.Download.ConcurrentFetches, log),
		store:    store,
		limiter:  limiter,
		logger:   log,
	}, nil
}

// NewWith creates a Pipeline from explicit collaborators, mainly for tests
func NewWith(client TweetClient, packager Packager, store processed.Store, limiter ratelimit.Limiter, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	return &Pipeline{
		client:   client,
		packager: packager,
		store:    store,
		limiter:  limiter,
		logger:   log,
	}
}

// Run resolves the tweet in the given context and archives its media. A run
// without media (or whose resolution fetch ultimately failed) is a no-op with
// the reason in the Outcome; only archive assembly and save failures surface
// as errors. The tweet is marked processed once a bundle has been produced,
// whether or not every media item made it in.
func (p *Pipeline) Run(context archive.PostContext) (*Outcome, error) {
	tweetID := context.TweetID
	outcome := &Outcome{TweetID: tweetID}

	if !twitter.IsValidTweetID(tweetID) {
		outcome.Reason = "invalid tweet id"
		p.logger.WarnWithFields("invalid tweet id", map[string]interface{}{
			"tweet_id": tweetID,
		})
		return outcome, nil
	}

	if p.store.Has(tweetID) {
		outcome.AlreadyProcessed = true
		p.logger.InfoWithFields("tweet was archived previously, archiving again", map[string]interface{}{
			"tweet_id": tweetID,
		})
	}

	if !p.limiter.Allow() {
		p.logger.Warn("rate limit reached, waiting")
		p.limiter.Wait()
	}

	response, err := p.client.FetchTweetDetail(tweetID)
	if err != nil {
		outcome.Reason = "resolution failed"
		p.logger.ErrorWithFields("tweet resolution failed", map[string]interface{}{
			"tweet_id": tweetID,
			"error":    err.Error(),
		})
		return outcome, nil
	}

	media := twitter.ResolveMedia(response, tweetID, p.logger)
	if len(media) == 0 {
		// The resolver already logged whether the tweet was missing
		// from the response or simply has no media.
		outcome.Reason = "no media found"
		return outcome, nil
	}

	result, err := p.packager.Archive(context, media)
	if err != nil {
		return nil, fmt.Errorf("failed to archive tweet %s: %w", tweetID, err)
	}

	// A bundle was produced; dropped items do not block marking the tweet
	// as processed.
	if err := p.store.Add(tweetID); err != nil {
		p.logger.WithError(err).Warn("failed to mark tweet as processed")
	}

	outcome.Archived = true
	outcome.Result = result
	return outcome, nil
}

// RunLink builds a PostContext from a status link and runs the pipeline.
// The link must contain a {handle}/status/{id} pattern.
func (p *Pipeline) RunLink(link, caption string, postedAt time.Time) (*Outcome, error) {
	context, err := archive.NewPostContext(link, caption, postedAt)
	if err != nil {
		return nil, err
	}
	return p.Run(context)
}
