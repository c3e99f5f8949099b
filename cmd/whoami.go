// ABOUTME: Whoami command for news-portal CLI
// ABOUTME: Shows the signed-in user and when the access token expires

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sawant8123/news-api-portal/internal/client"
	"github.com/sawant8123/news-api-portal/internal/session"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWhoami(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// runWhoami looks up the current user and returns exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	store := openStore()
	if _, code := requireSession(w, store); code != exitOK {
		return code
	}

	c, err := newClient(store)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitFailure
	}
	user, err := c.Me(ctx)
	if err != nil {
		return reportBackendError(w, store, err)
	}

	// The access token may have been refreshed by the call above
	expiry := sessionExpiry(store, time.Now())

	if IsJSONOutput() {
		fmt.Fprintln(w, formatWhoamiJSON(user, expiry))
	} else {
		fmt.Fprintln(w, formatWhoamiHuman(c.BaseURL(), user, expiry))
	}
	return exitOK
}

// sessionExpiry reads the stored access token expiry.
// An unreadable store is logged and reported as an unknown expiry.
func sessionExpiry(store session.Store, now time.Time) time.Time {
	s, err := store.Get()
	if err != nil {
		slog.Warn("Failed to read session for expiry", "error", err)
		return time.Time{}
	}
	return accessExpiry(s, now)
}

// accessExpiry returns when the access token expires, zero if unknown
func accessExpiry(s session.Session, now time.Time) time.Time {
	left, err := session.ExpiresIn(s.AccessToken, now)
	if err != nil {
		return time.Time{}
	}
	return now.Add(left)
}

// formatWhoamiHuman formats the user for human readability
func formatWhoamiHuman(url string, user *client.User, expiry time.Time) string {
	expires := "unknown"
	if !expiry.IsZero() {
		expires = humanize.Time(expiry)
	}
	return fmt.Sprintf(`Backend:  %s
Name:     %s
Email:    %s
Token:    expires %s`, url, user.Name, user.Email, expires)
}

// formatWhoamiJSON formats the user as JSON
func formatWhoamiJSON(user *client.User, expiry time.Time) string {
	output := map[string]any{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	}
	if !expiry.IsZero() {
		output["access_expires_at"] = expiry.UTC().Format(time.RFC3339)
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
