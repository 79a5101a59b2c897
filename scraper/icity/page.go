package icity

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"icity-exporter/models"
)

// entryIDRegexp captures the site-assigned id from a /a/<id> detail link.
var entryIDRegexp = regexp.MustCompile(`/a/([A-Za-z0-9]+)`)

// invisibleReplacer maps invisible separator glyphs that iCity sprinkles
// into date headings onto plain spaces.
var invisibleReplacer = strings.NewReplacer(
	" ", " ",
	" ", " ",
	" ", " ",
)

// ExtractEntries parses one listing page into its diary entries, in
// document order. The date heading carried by "day-cut" list items applies
// to every diary item until the next heading. A page without a posts list
// yields an empty slice, which the scrape loop treats as the end of
// pagination rather than an error.
func ExtractEntries(markup, baseURL string) []*models.Entry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	list := doc.Find("ul.posts-list").First()
	if list.Length() == 0 {
		return nil
	}

	var entries []*models.Entry
	currentDate := ""

	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		switch {
		case li.HasClass("day-cut"):
			currentDate = cleanInline(li.Text())
		case li.HasClass("diary"):
			if e := parseDiaryItem(li, currentDate, baseURL); e != nil {
				entries = append(entries, e)
			}
		}
	})

	return entries
}

// parseDiaryItem turns one li.diary into an Entry. Entries without the
// required detail link are malformed and reported as nil; every other
// field is optional and degrades to an empty string.
func parseDiaryItem(li *goquery.Selection, dateLabel, baseURL string) *models.Entry {
	link := li.Find(`div.meta a.timeago[href^="/a/"]`).First()
	if link.Length() == 0 {
		return nil
	}

	href, _ := link.Attr("href")
	id := href
	if m := entryIDRegexp.FindStringSubmatch(href); m != nil {
		id = m[1]
	}

	e := &models.Entry{
		ID:        id,
		DateLabel: dateLabel,
		SourceURL: resolveURL(baseURL, href),
	}

	if timeTag := link.Find("time.hours").First(); timeTag.Length() > 0 {
		e.DatetimeISO, _ = timeTag.Attr("datetime")
		e.DatetimeLocal, _ = timeTag.Attr("title")
		e.TimeLabel = cleanInline(timeTag.Text())
	}

	e.Title = cleanInline(li.Find("h4 a").First().Text())

	if comment := li.Find("div.line > div.comment").First(); comment.Length() > 0 {
		e.Text = textWithBreaks(comment)
	}

	if loc := li.Find("div.line > span.location").First(); loc.Length() > 0 {
		loc.Find("i").First().Remove()
		e.Location = cleanInline(loc.Text())
	}

	return e
}

// cleanInline strips invisible separators and collapses runs of whitespace
// into single spaces.
func cleanInline(s string) string {
	return strings.Join(strings.Fields(invisibleReplacer.Replace(s)), " ")
}

// resolveURL makes href absolute against the site base.
func resolveURL(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// textWithBreaks extracts the body text of a comment node. Hard <br>
// breaks become newlines, block elements end their line, every line is
// right-trimmed, and runs of blank lines collapse to a single separator.
func textWithBreaks(sel *goquery.Selection) string {
	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(strings.ReplaceAll(n.Data, " ", " "))
		case html.ElementNode:
			if n.Data == "br" {
				b.WriteString("\n")
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			switch n.Data {
			case "p", "div", "li", "blockquote":
				b.WriteString("\n")
			}
		}
	}

	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	return collapseBlankLines(b.String())
}

// collapseBlankLines right-trims each line, collapses consecutive blank
// lines into one, and drops leading/trailing blank lines.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))

	for _, ln := range lines {
		ln = strings.TrimRight(ln, " \t\r")
		if ln == "" && len(out) > 0 && out[len(out)-1] == "" {
			continue
		}
		out = append(out, ln)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
