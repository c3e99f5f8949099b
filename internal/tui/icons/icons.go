// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv("NEWS_PORTAL_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	// Terminals that usually ship with a patched font
	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}

	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	if os.Getenv("NERD_FONTS") == "1" {
		return true
	}

	return false
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Application
	App  = Icon{"󰎕", "◈"} // nf-md-newspaper
	User = Icon{"", "●"} // nf-oct-person

	// Listing
	Search  = Icon{"", "⌕"} // nf-oct-search
	Globe   = Icon{"󰇧", "◍"} // nf-md-earth
	Grid    = Icon{"󰕰", "▦"} // nf-md-view_grid
	List    = Icon{"󰈚", "≡"} // nf-md-format_list_bulleted
	Article = Icon{"󰈙", "▤"} // nf-md-file_document

	// Status indicators
	Warning = Icon{"", "⚠"} // nf-oct-alert

	// Actions
	Login = Icon{"󰍂", "→"} // nf-md-login
)
