package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tessro/moodplay/internal/spotify/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Spotify credentials",
	Long: `Commands for the stored Spotify OAuth token.

moodplay does not run the authorization flow itself. Obtain a token with
the scopes below and save it as JSON at the path shown by 'auth status';
moodplay refreshes it from then on. 'moodplay config init' lists the
scopes the token needs.`,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Spotify credentials",
	Long:  `Removes the stored Spotify OAuth token from the local machine.`,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  `Shows the stored token's state and, when it works, the Spotify account.`,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage(cfg.Spotify.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	if !storage.Exists() {
		if JSONOutput() {
			return printJSON(map[string]string{"status": "not_authenticated"})
		}
		fmt.Println("Not authenticated with Spotify.")
		return nil
	}

	if err := storage.Delete(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "logged_out"})
	}
	fmt.Println("Logged out of Spotify.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage(cfg.Spotify.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	token, err := storage.Load()
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	status := map[string]interface{}{
		"status":     auth.Describe(token),
		"token_file": storage.Path(),
	}
	if token != nil && !token.Expiry.IsZero() {
		status["expires_at"] = token.Expiry
	}

	if token == nil || cfg.Spotify.ClientID == "" {
		if JSONOutput() {
			return printJSON(status)
		}
		fmt.Printf("Spotify: %s\n", auth.Describe(token))
		fmt.Printf("Token file: %s\n", storage.Path())
		if cfg.Spotify.ClientID == "" {
			fmt.Println("Set spotify.client_id to check the account.")
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := zerolog.Nop()
	if Verbose() {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	}
	spotifyClient, err := newSpotifyClient(ctx, logger)
	if err != nil {
		return err
	}

	user, err := spotifyClient.GetCurrentUser(ctx)
	if err != nil {
		status["error"] = err.Error()
		if JSONOutput() {
			return printJSON(status)
		}
		fmt.Printf("Spotify: %s\n", auth.Describe(token))
		fmt.Printf("Token may be expired or invalid: %v\n", err)
		return nil
	}

	// The token source may have refreshed and saved a new token.
	if fresh, err := storage.Load(); err == nil && fresh != nil {
		token = fresh
	}

	if JSONOutput() {
		status["status"] = auth.Describe(token)
		status["user_id"] = user.ID
		status["display_name"] = user.DisplayName
		status["product"] = user.Product
		return printJSON(status)
	}

	fmt.Printf("Authenticated as: %s (%s)\n", user.DisplayName, user.ID)
	fmt.Printf("Account type: %s\n", user.Product)
	if user.Product != "premium" {
		fmt.Println("Note: Spotify Connect playback requires Premium.")
	}
	if !token.Expiry.IsZero() {
		fmt.Printf("Token expires: %s\n", token.Expiry.Format(time.RFC3339))
	}
	fmt.Printf("Token file: %s\n", storage.Path())
	return nil
}
