// ABOUTME: Headlines command for news-portal CLI
// ABOUTME: Prints top headlines for a country and category, or search results

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sawant8123/news-api-portal/internal/client"
	"github.com/sawant8123/news-api-portal/internal/listing"
	"github.com/sawant8123/news-api-portal/internal/tui/articles"
)

var (
	headlinesCountry  string
	headlinesCategory string
	headlinesQuery    string
)

var headlinesCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Print top headlines",
	Long: `Print top headlines for a country and category.

With --query, prints search results instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHeadlines(ctx, os.Stdout, client.HeadlinesParams{
			Query:    strings.TrimSpace(headlinesQuery),
			Country:  headlinesCountry,
			Category: headlinesCategory,
		})
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	headlinesCmd.Flags().StringVar(&headlinesCountry, "country", listing.DefaultCountry, "Country code ("+countryCodes()+")")
	headlinesCmd.Flags().StringVar(&headlinesCategory, "category", listing.DefaultCategory, "Category ("+categoryIDs()+")")
	headlinesCmd.Flags().StringVarP(&headlinesQuery, "query", "q", "", "Search keywords")
	rootCmd.AddCommand(headlinesCmd)
}

func countryCodes() string {
	codes := make([]string, 0, len(listing.Countries))
	for _, c := range listing.Countries {
		codes = append(codes, c.Code)
	}
	return strings.Join(codes, ", ")
}

func categoryIDs() string {
	ids := make([]string, 0, len(listing.Categories))
	for _, c := range listing.Categories {
		ids = append(ids, c.ID)
	}
	return strings.Join(ids, ", ")
}

// runHeadlines fetches and prints headlines and returns exit code
func runHeadlines(ctx context.Context, w io.Writer, p client.HeadlinesParams) int {
	if _, ok := listing.LookupCountry(p.Country); !ok {
		fmt.Fprintf(w, "Error: unknown country %q (use one of: %s)\n", p.Country, countryCodes())
		return exitFailure
	}
	if _, ok := listing.LookupCategory(p.Category); !ok {
		fmt.Fprintf(w, "Error: unknown category %q (use one of: %s)\n", p.Category, categoryIDs())
		return exitFailure
	}

	store := openStore()
	if _, code := requireSession(w, store); code != exitOK {
		return code
	}

	ctx, cancel := context.WithTimeout(ctx, listing.DefaultFetchTimeout)
	defer cancel()

	c, err := newClient(store)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitFailure
	}
	list, err := c.Headlines(ctx, p)
	if err != nil {
		return reportBackendError(w, store, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHeadlinesJSON(list))
		return exitOK
	}
	if len(list) == 0 {
		if p.Query != "" {
			fmt.Fprintln(w, listing.MsgNoSearchResults)
		} else {
			fmt.Fprintln(w, listing.MsgNoHeadlines)
		}
		return exitOK
	}
	fmt.Fprint(w, formatHeadlinesHuman(list, time.Now()))
	return exitOK
}

// formatHeadlinesHuman formats articles for human readability
func formatHeadlinesHuman(list []client.Article, now time.Time) string {
	var sb strings.Builder
	for i, a := range list {
		source := a.Source
		if source == "" {
			source = articles.UnknownSource
		}
		fmt.Fprintf(&sb, "%2d. %s\n", i+1, a.Title)
		fmt.Fprintf(&sb, "    %s · %s\n", source, articles.FormatDate(a.PublishedAt, now))
		fmt.Fprintf(&sb, "    %s\n", a.URL)
		if i < len(list)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// formatHeadlinesJSON formats articles as JSON
func formatHeadlinesJSON(list []client.Article) string {
	if list == nil {
		list = []client.Article{}
	}
	data, _ := json.MarshalIndent(client.HeadlinesResponse{Count: len(list), Articles: list}, "", "  ")
	return string(data)
}
