package cmd

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/muzikax/pulse/internal/config"
	"github.com/muzikax/pulse/internal/scrobble"
)

var lastfmCmd = &cobra.Command{
	Use:   "lastfm",
	Short: "Last.fm scrobbling commands.",
}

var lastfmAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize Pulse to scrobble to your Last.fm account.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLastfmAuth(cmd)
	},
}

func init() {
	lastfmCmd.AddCommand(lastfmAuthCmd)
	rootCmd.AddCommand(lastfmCmd)
}

// runLastfmAuth walks the Last.fm desktop auth flow: request a token,
// send the user to the authorization page, then exchange the approved
// token for a session key to put in config.toml.
func runLastfmAuth(cmd *cobra.Command) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.HasLastfmConfig() {
		return errors.New("lastfm api_key and api_secret must be set in config.toml first")
	}

	client := scrobble.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)

	token, err := client.GetToken()
	if err != nil {
		return fmt.Errorf("request token: %w", err)
	}

	authURL := client.GetAuthURL(token)
	fmt.Fprintf(cmd.OutOrStdout(), "Authorize Pulse in your browser:\n\n  %s\n\n", authURL)
	// The URL is already printed for manual use when no browser opens.
	_ = openBrowser(authURL)

	fmt.Fprint(cmd.OutOrStdout(), "Press Enter once you have authorized... ")
	reader := bufio.NewReader(cmd.InOrStdin())
	if _, err := reader.ReadString('\n'); err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}

	username, sessionKey, err := client.GetSession(token)
	if err != nil {
		return fmt.Errorf("exchange token: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Authorized as %s.\n\nAdd the session key to config.toml to enable scrobbling:\n\n  [lastfm]\n  session_key = %q\n",
		username, sessionKey)
	return nil
}
