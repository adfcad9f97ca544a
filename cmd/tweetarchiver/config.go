package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"tweetarchiver/pkg/auth"
	"tweetarchiver/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage tweetarchiver configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TWEETARCHIVER_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.tweetarchiver.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

Sensitive values like the CSRF token are masked.`,
	Run: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".tweetarchiver.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(os.Stderr, "configuration file already exists: %s\n", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# tweetarchiver configuration file
#
# Every option here can also be set through an environment variable
# prefixed with TWEETARCHIVER_, e.g. TWEETARCHIVER_CSRF_TOKEN.

# Twitter/X API settings
twitter:
  # ct0 cookie value (required unless stored with 'tweetarchiver auth set')
  csrf_token: ""

  # Client language sent as the lang cookie and language header
  language: "en"

  # User agent override (leave empty to use the default)
  user_agent: ""

# Retry behavior for the tweet resolution fetch.
# Media downloads are never retried.
retry:
  max_attempts: 3
  delay: 1s

# Output settings
output:
  # Directory where archive bundles are written
  base_directory: "./archives"

  # Overwrite an existing bundle for the same tweet
  overwrite_existing: true

# Media download settings
download:
  # Number of concurrent media fetches (1-10)
  concurrent_fetches: 3

  # Per-request timeout
  timeout: 30s

# Rate limiting for upstream API calls
rate_limit:
  enabled: false
  requests_per_minute: 60

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (leave empty for console only)
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create configuration file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration file created:", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store your ct0 token with 'tweetarchiver auth set'")
	fmt.Println("2. Archive a tweet with 'tweetarchiver fetch <status-url>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	displayCfg := *cfg
	if displayCfg.Twitter.CSRFToken != "" {
		displayCfg.Twitter.CSRFToken = auth.MaskToken(displayCfg.Twitter.CSRFToken)
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to format configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Current configuration:")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (TWEETARCHIVER_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in default locations)")
	}
	fmt.Println("4. Default values")
}
