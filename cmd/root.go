// ABOUTME: Root command for news-portal CLI
// ABOUTME: Handles global flags, configuration and launching the TUI

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sawant8123/news-api-portal/internal/auth"
	"github.com/sawant8123/news-api-portal/internal/browser"
	"github.com/sawant8123/news-api-portal/internal/client"
	"github.com/sawant8123/news-api-portal/internal/config"
	"github.com/sawant8123/news-api-portal/internal/logger"
	"github.com/sawant8123/news-api-portal/internal/session"
	"github.com/sawant8123/news-api-portal/internal/tui"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 2 // backend, network or local failure
	exitAuth    = 3 // not signed in or session expired
)

var (
	cfgFile    string
	jsonOutput bool

	// settings is resolved before any command runs
	settings *config.Config

	// openStore returns the session store commands operate on
	openStore = func() session.Store {
		return session.NewFileStore(session.DefaultConfigDir())
	}
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "news-portal",
	Short: "Terminal client for the News Portal",
	Long: `news-portal browses top headlines from the News Portal backend.

Run without a subcommand to open the interactive interface.

Environment Variables:
  NEWS_PORTAL_API_URL               Backend API URL (default: ` + config.DefaultAPIURL + `)
  NEWS_PORTAL_GOOGLE_CLIENT_ID      OAuth client ID for Google sign-in
  NEWS_PORTAL_GOOGLE_CLIENT_SECRET  OAuth client secret for Google sign-in
  NEWS_PORTAL_ALL_PROXY             ssh+socks5://user@host:port?private-key=/path
  NEWS_PORTAL_LOG_LEVEL             debug, info, warn or error
  NEWS_PORTAL_LOG_FORMAT            text or json

Exit codes:
  0  Success
  2  Backend, network or local failure
  3  Not signed in or session expired`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadSettings(cmd.Flags(), cfgFile)
		if err != nil {
			return err
		}
		settings = c
		logger.Init(os.Stderr, settings.LogLevel, settings.LogFormat)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	def := config.Default()
	settings = &def

	rootCmd.PersistentFlags().String("api-url", "", "Backend API URL (overrides NEWS_PORTAL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: "+config.DefaultFile()+")")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// loadSettings resolves .env, flags, env vars and the config file
func loadSettings(fs *pflag.FlagSet, file string) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	v := viper.New()
	if err := config.BindFlags(v, fs); err != nil {
		return nil, err
	}
	return config.Load(v, file)
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// newClient builds a backend client over the configured transport
func newClient(store session.Store, opts ...client.Option) (*client.Client, error) {
	rt, err := client.NewTransport(settings.AllProxy)
	if err != nil {
		return nil, err
	}
	opts = append([]client.Option{client.WithTransport(rt)}, opts...)
	return client.New(settings.APIURL, store, opts...), nil
}

// exitCodeFor maps a backend error to an exit code
func exitCodeFor(err error) int {
	if client.IsUnauthorized(err) || errors.Is(err, client.ErrNoRefreshToken) {
		return exitAuth
	}
	return exitFailure
}

// reportBackendError prints err and returns its exit code.
// An authorization failure also drops the stored session.
func reportBackendError(w io.Writer, store session.Store, err error) int {
	if exitCodeFor(err) != exitAuth {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitFailure
	}
	if cerr := store.Clear(); cerr != nil {
		slog.Error("Failed to clear session", "error", cerr)
	}
	fmt.Fprintln(w, "Session expired. Run 'news-portal login' again.")
	return exitAuth
}

// requireSession reports a missing session and returns its exit code
func requireSession(w io.Writer, store session.Store) (session.Session, int) {
	s, err := store.Get()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return s, exitFailure
	}
	if !s.SignedIn() {
		fmt.Fprintln(w, "Not signed in. Run 'news-portal login' first.")
		return s, exitAuth
	}
	return s, exitOK
}

// runTUI starts the interactive interface with logs sent to a file
func runTUI() error {
	closer, err := logger.InitFile(config.StateDir(), settings.LogLevel, settings.LogFormat)
	if err != nil {
		return err
	}
	defer closer.Close()

	store := openStore()
	nav := tui.NewNavigator()
	c, err := newClient(store, client.WithNavigator(nav))
	if err != nil {
		return err
	}

	provider := auth.NewGoogleProvider(settings.GoogleClientID, settings.GoogleClientSecret,
		auth.WithAuthURLNotice(func(u string) {
			slog.Info("Google sign-in started", "url", u)
		}),
	)
	flow := auth.NewFlow(c, store, auth.WithProvider(provider))

	slog.Info("Starting TUI", "api_url", settings.APIURL)
	return tui.Run(tui.Deps{
		Fetcher: c,
		Store:   store,
		Flow:    flow,
		Open:    browser.Open,
	}, nav)
}
