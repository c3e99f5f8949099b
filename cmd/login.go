// ABOUTME: Login and logout commands for news-portal CLI
// ABOUTME: Signs in with Google (or a supplied ID token) and clears the stored session

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sawant8123/news-api-portal/internal/auth"
	"github.com/sawant8123/news-api-portal/internal/session"
)

var loginIDToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Google",
	Long: `Sign in with a Google account and store the backend session.

Opens the Google consent page in your browser and waits for the redirect.
Use --id-token to exchange an ID token obtained elsewhere instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout, loginIDToken)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runLogout(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginIDToken, "id-token", "", "Google ID token to exchange instead of opening a browser")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, idToken string) int {
	store := openStore()
	c, err := newClient(store)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitFailure
	}

	var provider auth.IdentityProvider = auth.StaticProvider{Token: idToken}
	if idToken == "" {
		provider = auth.NewGoogleProvider(settings.GoogleClientID, settings.GoogleClientSecret,
			auth.WithAuthURLNotice(func(u string) {
				fmt.Fprintf(w, "Opening Google sign-in in your browser.\nIf it does not open, visit:\n\n  %s\n\n", u)
			}),
		)
	}

	flow := auth.NewFlow(c, store, auth.WithProvider(provider))
	s, err := flow.SignIn(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", auth.UserMessage(err))
		if errors.Is(err, auth.ErrIdentityProvider) {
			return exitAuth
		}
		return exitCodeFor(err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatLoginJSON(s))
	} else {
		fmt.Fprintf(w, "Signed in as %s\n", s.Name())
	}
	return exitOK
}

func formatLoginJSON(s session.Session) string {
	data, _ := json.MarshalIndent(map[string]any{
		"signed_in": true,
		"name":      s.Name(),
	}, "", "  ")
	return string(data)
}

// runLogout clears the session and returns exit code
func runLogout(w io.Writer) int {
	store := openStore()

	s, err := store.Get()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitFailure
	}
	if !s.SignedIn() {
		fmt.Fprintln(w, "Not signed in.")
		return exitOK
	}

	if err := auth.NewFlow(nil, store).Logout(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitFailure
	}
	fmt.Fprintln(w, "Signed out.")
	return exitOK
}
