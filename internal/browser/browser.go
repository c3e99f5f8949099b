// ABOUTME: Opens article and sign-in URLs in the user's default browser
// ABOUTME: Refuses anything that is not an absolute http or https URL

package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Opener launches a URL; tests replace it to avoid starting a browser
type Opener func(rawURL string) error

// Open validates rawURL and launches it with the platform opener
func Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}
	return command(rawURL).Start()
}

// Validate rejects URLs the browser should never be handed
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without a host")
	}
	return nil
}

func command(rawURL string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", rawURL)
	case "windows":
		// rundll32 avoids shell interpretation of the URL
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return exec.Command("xdg-open", rawURL)
	}
}
