package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"tweetarchiver/pkg/auth"
	"tweetarchiver/pkg/config"
	"tweetarchiver/pkg/logger"
	"tweetarchiver/pkg/pipeline"
	"tweetarchiver/pkg/twitter"
)

var (
	// Fetch command flags
	outputDir  string
	concurrent int
	caption    string
	postedAt   string
	handle     string
	csrfToken  string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <status-url | tweet-id>",
	Short: "Archive the media attached to a tweet",
	Long: `Resolve a tweet to its attached media, download the binaries, and save
a zip bundle named {handle}_{id}.zip containing the media files, a
metadata.txt sidecar, and a .url shortcut back to the tweet.

A full status URL carries the author handle; when passing a bare numeric
tweet id, supply the handle with --handle.

The ct0 CSRF token is taken from stored credentials ('tweetarchiver auth
set'), the TWEETARCHIVER_CSRF_TOKEN environment variable, or --csrf-token.
Without it the upstream call fails with an auth error.`,
	Example: `  # Archive from a status link
  tweetarchiver fetch https://x.com/alice/status/123456789

  # Archive by id, with the author handle given explicitly
  tweetarchiver fetch 123456789 --handle alice

  # Attach the caption and timestamp shown on the page
  tweetarchiver fetch https://x.com/alice/status/123 --caption "hello" --posted-at 2024-01-01T00:00:00Z`,
	Args: cobra.ExactArgs(1),
	Run:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for archives")
	fetchCmd.Flags().IntVar(&concurrent, "concurrent", 0, "number of concurrent media fetches")
	fetchCmd.Flags().StringVar(&caption, "caption", "", "tweet caption text for the metadata sidecar")
	fetchCmd.Flags().StringVar(&postedAt, "posted-at", "", "tweet timestamp (RFC3339); defaults to now")
	fetchCmd.Flags().StringVar(&handle, "handle", "", "author handle (required with a bare tweet id)")
	fetchCmd.Flags().StringVar(&csrfToken, "csrf-token", "", "ct0 CSRF cookie value")
}

func runFetch(cmd *cobra.Command, args []string) {
	link, err := resolveStatusLink(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := loadConfig()

	// Fall back to stored credentials when no token was given explicitly
	if cfg.Twitter.CSRFToken == "" {
		if manager, err := auth.NewManager(); err == nil {
			if creds, err := manager.Retrieve(); err == nil {
				cfg.Twitter.CSRFToken = creds.CSRFToken
				if creds.Language != "" {
					cfg.Twitter.Language = creds.Language
				}
			}
		}
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()

	var ts time.Time
	if postedAt != "" {
		ts, err = time.Parse(time.RFC3339, postedAt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --posted-at value: %v\n", err)
			os.Exit(1)
		}
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		log.WithError(err).Error("failed to build pipeline")
		os.Exit(1)
	}

	outcome, err := p.RunLink(link, caption, ts)
	if err != nil {
		log.WithError(err).Error("archival failed")
		os.Exit(1)
	}

	if !outcome.Archived {
		fmt.Printf("Nothing archived for tweet %s: %s\n", outcome.TweetID, outcome.Reason)
		return
	}

	fmt.Printf("Saved %s (%d/%d media items)\n",
		outcome.Result.SavedPath, outcome.Result.MediaArchived, outcome.Result.MediaTotal)
	if outcome.AlreadyProcessed {
		fmt.Println("Note: this tweet had been archived before.")
	}
}

// resolveStatusLink turns the positional argument into a status link,
// accepting either a full permalink or a bare id plus --handle
func resolveStatusLink(arg string) (string, error) {
	if _, _, err := twitter.ParseStatusURL(arg); err == nil {
		return arg, nil
	}

	if twitter.IsValidTweetID(arg) {
		if handle == "" {
			return "", fmt.Errorf("a bare tweet id needs --handle to name the archive")
		}
		return twitter.CanonicalTweetURL(handle, arg), nil
	}

	return "", fmt.Errorf("argument %q is neither a status URL nor a tweet id", arg)
}

// loadConfig loads layered configuration plus the fetch command's flags
func loadConfig() *config.Config {
	flags := make(map[string]interface{})
	if csrfToken != "" {
		flags["csrf-token"] = csrfToken
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if concurrent > 0 {
		flags["concurrent"] = concurrent
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
