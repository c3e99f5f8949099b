// ABOUTME: Tests for configuration loading
// ABOUTME: Covers precedence, validation, .env loading and config init output

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sawant8123/news-api-portal/internal/client"
)

// isolate points XDG config at a temp dir and clears NEWS_PORTAL_* vars
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NEWS_PORTAL_API_URL", "NEWS_PORTAL_GOOGLE_CLIENT_ID", "NEWS_PORTAL_LOG_LEVEL",
		"NEWS_PORTAL_ALL_PROXY", "all_proxy", "ALL_PROXY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "api_url: http://file.example/api\ngoogle_client_id: file-id\nlog_level: warn\n")

	t.Run("file over default", func(t *testing.T) {
		cfg, err := Load(viper.New(), path)
		require.NoError(t, err)
		assert.Equal(t, "http://file.example/api", cfg.APIURL)
		assert.Equal(t, "file-id", cfg.GoogleClientID)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("NEWS_PORTAL_API_URL", "http://env.example/api/")
		cfg, err := Load(viper.New(), path)
		require.NoError(t, err)
		assert.Equal(t, "http://env.example/api", cfg.APIURL)
		assert.Equal(t, "file-id", cfg.GoogleClientID)
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("NEWS_PORTAL_API_URL", "http://env.example/api")

		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.String("api-url", "", "")
		require.NoError(t, fs.Parse([]string{"--api-url", "https://flag.example/api"}))

		v := viper.New()
		require.NoError(t, BindFlags(v, fs))
		cfg, err := Load(v, path)
		require.NoError(t, err)
		assert.Equal(t, "https://flag.example/api", cfg.APIURL)
	})
}

func TestLoad_AllProxyFromConventionalEnv(t *testing.T) {
	isolate(t)
	t.Setenv("all_proxy", "ssh+socks5://ops@jump.example:22?private-key=/tmp/key")

	cfg, err := Load(viper.New(), writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "ssh+socks5://ops@jump.example:22?private-key=/tmp/key", cfg.AllProxy)
}

func TestLoad_InvalidAllProxy(t *testing.T) {
	isolate(t)
	t.Setenv("NEWS_PORTAL_ALL_PROXY", "ssh+socks5://ops@jump.example:22")

	_, err := Load(viper.New(), writeConfig(t, ""))
	assert.ErrorIs(t, err, client.ErrInvalidProxy)
}

func TestLoad_IgnoresNonTunnelAllProxy(t *testing.T) {
	isolate(t)
	t.Setenv("ALL_PROXY", "socks5://127.0.0.1:1080")

	cfg, err := Load(viper.New(), writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.AllProxy)
}

func TestLoad_InvalidAPIURL(t *testing.T) {
	isolate(t)
	for _, bad := range []string{"ftp://example.com", "not a url", "http://"} {
		t.Run(bad, func(t *testing.T) {
			t.Setenv("NEWS_PORTAL_API_URL", bad)
			_, err := Load(viper.New(), writeConfig(t, ""))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolate(t)
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("NEWS_PORTAL_GOOGLE_CLIENT_ID=dotenv-id\n"), 0600))

	require.NoError(t, LoadDotEnv(envPath))
	cfg, err := Load(viper.New(), writeConfig(t, "google_client_id: file-id\n"))
	require.NoError(t, err)
	assert.Equal(t, "dotenv-id", cfg.GoogleClientID)

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.GoogleClientID = "abc.apps.googleusercontent.com"

	require.NoError(t, WriteFile(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Config
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, cfg, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	assert.ErrorIs(t, WriteFile(path, cfg, false), ErrConfigExists)
	assert.NoError(t, WriteFile(path, cfg, true))
}
