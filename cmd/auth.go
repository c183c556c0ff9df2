package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/olivia646/spotify-concerts/internal/config"
)

const authTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Spotify",
	Long: `Authenticate with Spotify so your top artists can be read.

This command will guide you through the Spotify authorization code flow:
1. You'll be prompted for your Spotify app's client ID and secret
2. A browser URL will be printed for you to authorize the application
3. A temporary listener on the redirect URI receives the authorization code
4. The access and refresh tokens are saved to your config file

Create an app at https://developer.spotify.com/dashboard and register
the redirect URI (default http://127.0.0.1:8080/callback).`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
	defer cancel()
	reader := bufio.NewReader(os.Stdin)
	logger := newLogger("warn")

	// Load existing config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("Spotify Authentication")
	fmt.Println("======================")
	fmt.Println()

	// Check if we already have credentials
	if cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != "" {
		fmt.Printf("Found existing app credentials.\n")
		fmt.Printf("Client ID: %s\n", cfg.Spotify.ClientID)
		fmt.Print("\nUse existing credentials? [Y/n]: ")
		response, err := reader.ReadString('\n')
		if err != nil {
			response = "y"
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "" && response != "y" && response != "yes" {
			cfg.Spotify.ClientID = ""
			cfg.Spotify.ClientSecret = ""
		}
	}

	if cfg.Spotify.ClientID == "" {
		fmt.Print("Enter your Spotify Client ID: ")
		id, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read client ID: %w", err)
		}
		cfg.Spotify.ClientID = strings.TrimSpace(id)
	}

	if cfg.Spotify.ClientSecret == "" {
		fmt.Print("Enter your Spotify Client Secret: ")
		secret, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read client secret: %w", err)
		}
		cfg.Spotify.ClientSecret = strings.TrimSpace(secret)
	}

	if err := cfg.Validate(config.SectionAuth); err != nil {
		return err
	}

	client, err := newSpotifyClient(cfg, logger)
	if err != nil {
		return err
	}

	state := uuid.NewString()
	codes, stop, err := listenForCode(cfg.Spotify.RedirectURI, state)
	if err != nil {
		return err
	}
	defer stop()

	fmt.Println("\nPlease visit this URL to authorize spotify-concerts:")
	fmt.Printf("\n  %s\n\n", client.AuthURL(cfg.Spotify.RedirectURI, state))
	fmt.Printf("Waiting for the redirect to %s ...\n", cfg.Spotify.RedirectURI)

	var code string
	select {
	case res := <-codes:
		if res.err != nil {
			return res.err
		}
		code = res.code
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for authorization: %w", ctx.Err())
	}

	token, err := client.ExchangeCode(ctx, code, cfg.Spotify.RedirectURI)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	cfg.Spotify.AccessToken = token.AccessToken
	cfg.Spotify.RefreshToken = token.RefreshToken
	cfg.Spotify.TokenExpiry = token.Expiry
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("\n✓ Authentication successful!\n")
	fmt.Printf("✓ Tokens saved to %s\n", cfg.Path())
	fmt.Println("\nYou can now use 'spotify-concerts find' to look for concerts.")

	return nil
}

type callbackResult struct {
	code string
	err  error
}

// listenForCode serves the redirect URI until one callback arrives.
func listenForCode(redirectURI, state string) (<-chan callbackResult, func(), error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redirect URI: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", u.Host, err)
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		res := parseCallback(r.URL.Query(), state)
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorized. You can close this window and return to the terminal.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- callbackResult{err: fmt.Errorf("callback listener failed: %w", err)}:
			default:
			}
		}
	}()

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	return results, stop, nil
}

// parseCallback validates the query string Spotify redirects with.
func parseCallback(q url.Values, state string) callbackResult {
	if authErr := q.Get("error"); authErr != "" {
		return callbackResult{err: fmt.Errorf("spotify authorization failed: %s", authErr)}
	}
	if q.Get("state") != state {
		return callbackResult{err: fmt.Errorf("authorization state mismatch")}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: fmt.Errorf("missing authorization code")}
	}
	return callbackResult{code: code}
}
