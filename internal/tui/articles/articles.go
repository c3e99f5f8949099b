// ABOUTME: Article view rendering headlines as a card grid or a compact list
// ABOUTME: Tracks the selected article and scrolls to keep it visible

package articles

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/sawant8123/news-api-portal/internal/client"
	"github.com/sawant8123/news-api-portal/internal/listing"
	"github.com/sawant8123/news-api-portal/internal/tui/icons"
	"github.com/sawant8123/news-api-portal/internal/tui/styles"
)

// Fallback text for missing article fields
const (
	NoDescription = "No description available"
	UnknownSource = "Unknown Source"
)

const (
	// cardHeight is a grid card including its border
	cardHeight = 6
	// listItemHeight is one list entry including the blank separator
	listItemHeight = 3
	// twoColumnWidth is the narrowest view that fits two grid columns
	twoColumnWidth = 80
)

// View displays articles
type View struct {
	articles []client.Article
	mode     listing.ViewMode
	cursor   int
	offset   int
	width    int
	height   int
	now      func() time.Time
}

// New creates an article view
func New(width, height int) *View {
	return &View{
		mode:   listing.ViewGrid,
		width:  width,
		height: height,
		now:    time.Now,
	}
}

// SetArticles replaces the articles and resets the selection
func (v *View) SetArticles(a []client.Article) {
	v.articles = a
	v.cursor = 0
	v.offset = 0
}

// SetMode switches between grid and list layout
func (v *View) SetMode(m listing.ViewMode) {
	v.mode = m
	v.scroll()
}

// SetSize updates the view dimensions
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.scroll()
}

// SetClock overrides time.Now for relative dates
func (v *View) SetClock(now func() time.Time) {
	v.now = now
}

// Len returns the number of articles
func (v *View) Len() int { return len(v.articles) }

// Cursor returns the selected index
func (v *View) Cursor() int { return v.cursor }

// Selected returns the selected article
func (v *View) Selected() (client.Article, bool) {
	if v.cursor < 0 || v.cursor >= len(v.articles) {
		return client.Article{}, false
	}
	return v.articles[v.cursor], true
}

// Next moves the selection forward
func (v *View) Next() {
	if v.cursor < len(v.articles)-1 {
		v.cursor++
		v.scroll()
	}
}

// Prev moves the selection back
func (v *View) Prev() {
	if v.cursor > 0 {
		v.cursor--
		v.scroll()
	}
}

// columns returns how many cards share a row
func (v *View) columns() int {
	if v.mode == listing.ViewGrid && v.width >= twoColumnWidth {
		return 2
	}
	return 1
}

// visibleRows returns how many rows fit in the height
func (v *View) visibleRows() int {
	h := cardHeight
	if v.mode == listing.ViewList {
		h = listItemHeight
	}
	return max(1, v.height/h)
}

// scroll adjusts offset (in rows) so the cursor row is on screen
func (v *View) scroll() {
	row := v.cursor / v.columns()
	rows := v.visibleRows()
	if row < v.offset {
		v.offset = row
	}
	if row >= v.offset+rows {
		v.offset = row - rows + 1
	}
}

// View renders the articles
func (v *View) View() string {
	if len(v.articles) == 0 {
		return ""
	}
	if v.mode == listing.ViewList {
		return v.viewList()
	}
	return v.viewGrid()
}

func (v *View) viewGrid() string {
	cols := v.columns()
	cardWidth := v.width/cols - 2
	rows := v.visibleRows()

	var lines []string
	for row := v.offset; row < v.offset+rows; row++ {
		var cards []string
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(v.articles) {
				break
			}
			cards = append(cards, v.renderCard(v.articles[i], cardWidth, i == v.cursor))
		}
		if len(cards) == 0 {
			break
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *View) renderCard(a client.Article, width int, selected bool) string {
	inner := max(10, width-4)

	var sb strings.Builder
	sb.WriteString(styles.ArticleTitle.Render(truncate(a.Title, inner)))
	sb.WriteString("\n")
	sb.WriteString(truncate(description(a), inner))
	sb.WriteString("\n")
	sb.WriteString(styles.ArticleMeta.Render(truncate(v.meta(a), inner)))

	style := styles.Panel
	if selected {
		style = styles.ActivePanel
	}
	return style.Width(width).Render(sb.String())
}

func (v *View) viewList() string {
	inner := max(10, v.width-4)
	rows := v.visibleRows()
	end := min(len(v.articles), v.offset+rows)

	var sb strings.Builder
	for i := v.offset; i < end; i++ {
		a := v.articles[i]
		marker := "  "
		titleStyle := styles.ArticleTitle
		if i == v.cursor {
			marker = styles.KeyStyle.Render("▸ ")
			titleStyle = titleStyle.Foreground(styles.Accent)
		}
		sb.WriteString(marker + titleStyle.Render(truncate(a.Title, inner)))
		sb.WriteString("\n  ")
		sb.WriteString(styles.ArticleMeta.Render(truncate(v.meta(a)+" │ "+description(a), inner)))
		if i < end-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

func (v *View) meta(a client.Article) string {
	return icons.Article.String() + " " + source(a) + " · " + FormatDate(a.PublishedAt, v.now())
}

func description(a client.Article) string {
	if strings.TrimSpace(a.Description) == "" {
		return NoDescription
	}
	return singleLine(a.Description)
}

func source(a client.Article) string {
	if strings.TrimSpace(a.Source) == "" {
		return UnknownSource
	}
	return a.Source
}

// FormatDate renders an RFC 3339 timestamp as "Jan 2, 2006 (3 hours ago)".
// Unparseable input is returned unchanged.
func FormatDate(publishedAt string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return publishedAt
	}
	return t.Format("Jan 2, 2006") + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, width int) string {
	return runewidth.Truncate(singleLine(s), width, "…")
}
