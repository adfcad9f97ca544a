package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"tweetarchiver/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored CSRF session token",
	Long: `Manage the ct0 CSRF token the archiver sends with API requests.

The token is stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variable TWEETARCHIVER_CSRF_TOKEN (read-only fallback)

To get the value:
1. Log into x.com in your browser
2. Open Developer Tools (F12)
3. Go to Application/Storage > Cookies
4. Copy the ct0 cookie value`,
}

// authSetCmd represents the auth set command
var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the CSRF token securely",
	Run:   runAuthSet,
}

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a token is stored",
	Run:   runAuthStatus,
}

// authRemoveCmd represents the auth remove command
var authRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the stored token",
	Run:   runAuthRemove,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRemoveCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize credential manager: %v\n", err)
		os.Exit(1)
	}

	fmt.Print("CSRF token (ct0 cookie): ")
	tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read token: %v\n", err)
		os.Exit(1)
	}

	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		fmt.Fprintln(os.Stderr, "token cannot be empty")
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Client language [en]: ")
	language, _ := reader.ReadString('\n')
	language = strings.TrimSpace(language)

	creds := &auth.Credentials{
		CSRFToken: token,
		Language:  language,
	}

	if err := manager.Store(creds); err != nil {
		fmt.Fprintf(os.Stderr, "failed to store credentials: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Token stored.")
}

func runAuthStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize credential manager: %v\n", err)
		os.Exit(1)
	}

	creds, err := manager.Retrieve()
	if err != nil {
		fmt.Println("No token stored.")
		return
	}

	fmt.Printf("Token: %s\n", auth.MaskToken(creds.CSRFToken))
	if creds.Language != "" {
		fmt.Printf("Language: %s\n", creds.Language)
	}
	if !creds.LastModified.IsZero() {
		fmt.Printf("Stored: %s\n", creds.LastModified.Format("2006-01-02 15:04:05"))
	}
}

func runAuthRemove(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize credential manager: %v\n", err)
		os.Exit(1)
	}

	if err := manager.Delete(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to remove credentials: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Token removed.")
}
