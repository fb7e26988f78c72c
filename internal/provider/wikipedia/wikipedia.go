// Package wikipedia provides HTML adapters for encyclopedia pages: season
// standings tables, race weekend pages, club infoboxes and league tables.
//
// Tables are located with pluggable Locators (caption keywords, section
// headings) and read by column index. Rows missing their required cells are
// skipped, never fatal.
package wikipedia

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/albapepper/scoracle-feeds/internal/provider"
	"github.com/albapepper/scoracle-feeds/internal/provider/fetch"
)

// DefaultBaseURL is the encyclopedia host used to resolve relative links.
const DefaultBaseURL = "https://en.wikipedia.org"

// Handler builds Wikipedia adapters.
type Handler struct {
	client  *fetch.Client
	baseURL string
	now     func() time.Time
	logger  *slog.Logger
}

// NewHandler creates a Wikipedia handler. now may be nil.
func NewHandler(client *fetch.Client, baseURL string, now func() time.Time, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if now == nil {
		now = time.Now
	}
	return &Handler{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     now,
		logger:  logger,
	}
}

// PageURL returns the absolute URL of an article title or path.
func (h *Handler) PageURL(titleOrPath string) string {
	if strings.HasPrefix(titleOrPath, "http://") || strings.HasPrefix(titleOrPath, "https://") {
		return titleOrPath
	}
	if strings.HasPrefix(titleOrPath, "/") {
		return h.baseURL + titleOrPath
	}
	return h.baseURL + "/wiki/" + strings.ReplaceAll(titleOrPath, " ", "_")
}

// resolve turns an href found on a page into an absolute URL.
func (h *Handler) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, err := url.Parse(h.baseURL + "/")
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// --------------------------------------------------------------------------
// Table locators
// --------------------------------------------------------------------------

// Locator finds candidate tables in a document.
type Locator func(doc *goquery.Document) *goquery.Selection

// ByCaption matches table.wikitable elements whose caption contains every
// keyword, case-insensitively.
func ByCaption(keywords ...string) Locator {
	return func(doc *goquery.Document) *goquery.Selection {
		return doc.Find("table.wikitable").FilterFunction(func(_ int, t *goquery.Selection) bool {
			return containsAll(t.Find("caption").First().Text(), keywords)
		})
	}
}

// ByHeading matches table.wikitable elements in the section under the first
// h2/h3/h4 heading containing every keyword.
func ByHeading(keywords ...string) Locator {
	return func(doc *goquery.Document) *goquery.Selection {
		var nodes []*html.Node
		doc.Find("h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
			if !containsAll(h.Text(), keywords) {
				return true
			}
			start := h
			if h.Parent().HasClass("mw-heading") {
				start = h.Parent()
			}
			start.NextUntil("h2, h3, h4, div.mw-heading").Each(func(_ int, s *goquery.Selection) {
				if s.Is("table.wikitable") {
					nodes = append(nodes, s.Nodes...)
				}
				nodes = append(nodes, s.Find("table.wikitable").Nodes...)
			})
			return len(nodes) == 0
		})
		return doc.FindNodes(nodes...)
	}
}

// FirstOf tries locators in order and returns the first non-empty match.
func FirstOf(locators ...Locator) Locator {
	return func(doc *goquery.Document) *goquery.Selection {
		var last *goquery.Selection
		for _, l := range locators {
			last = l(doc)
			if last.Length() > 0 {
				return last
			}
		}
		return last
	}
}

func containsAll(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, k := range keywords {
		if !strings.Contains(text, strings.ToLower(k)) {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// Cell helpers
// --------------------------------------------------------------------------

// dataCells returns the trimmed text of a row's td cells.
func dataCells(row *goquery.Selection) []string {
	return cellText(row.Find("td"))
}

// allCells returns th and td cells in document order. Rows without any td
// (header rows) yield nil.
func allCells(row *goquery.Selection) []string {
	if row.Find("td").Length() == 0 {
		return nil
	}
	return cellText(row.ChildrenFiltered("th, td"))
}

func cellText(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, c *goquery.Selection) {
		out = append(out, provider.CleanText(c.Text()))
	})
	return out
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}
