// ABOUTME: Fixed catalogs for the listing filters
// ABOUTME: Countries, categories and view modes offered by the news screen

package listing

// Default filter values used by the initial load
const (
	DefaultCountry  = "us"
	DefaultCategory = "general"
)

// Country is a selectable headline country
type Country struct {
	Code string
	Name string
	Flag string
}

// Label returns the flag and name for display
func (c Country) Label() string {
	return c.Flag + " " + c.Name
}

// Countries lists the supported countries in display order
var Countries = []Country{
	{Code: "us", Name: "United States", Flag: "🇺🇸"},
	{Code: "gb", Name: "United Kingdom", Flag: "🇬🇧"},
	{Code: "in", Name: "India", Flag: "🇮🇳"},
	{Code: "ca", Name: "Canada", Flag: "🇨🇦"},
	{Code: "au", Name: "Australia", Flag: "🇦🇺"},
	{Code: "de", Name: "Germany", Flag: "🇩🇪"},
	{Code: "fr", Name: "France", Flag: "🇫🇷"},
	{Code: "jp", Name: "Japan", Flag: "🇯🇵"},
}

// Category is a headline category
type Category struct {
	ID   string
	Name string
}

// Categories lists the supported categories in display order
var Categories = []Category{
	{ID: "general", Name: "General"},
	{ID: "technology", Name: "Technology"},
	{ID: "business", Name: "Business"},
	{ID: "sports", Name: "Sports"},
	{ID: "entertainment", Name: "Entertainment"},
	{ID: "health", Name: "Health"},
	{ID: "science", Name: "Science"},
}

// ViewMode selects how articles are laid out
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// Label returns the human-readable name of the view mode
func (v ViewMode) Label() string {
	switch v {
	case ViewList:
		return "List View"
	default:
		return "Grid View"
	}
}

// Toggle returns the other view mode
func (v ViewMode) Toggle() ViewMode {
	if v == ViewList {
		return ViewGrid
	}
	return ViewList
}

// LookupCountry finds a country by code
func LookupCountry(code string) (Country, bool) {
	for _, c := range Countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// LookupCategory finds a category by id
func LookupCategory(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryIndex returns the position of id in Categories, or -1
func CategoryIndex(id string) int {
	for i, c := range Categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}
