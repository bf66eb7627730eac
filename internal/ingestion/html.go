package ingestion

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// postingSelectors are tried in order to locate the description on job boards.
var postingSelectors = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// LooksLikeHTML reports whether s appears to be an HTML document or fragment.
func LooksLikeHTML(s string) bool {
	head := strings.ToLower(strings.TrimSpace(s))
	if len(head) > 512 {
		head = head[:512]
	}
	if strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") {
		return true
	}
	for _, tag := range []string{"<body", "<div", "<p>", "<ul", "<li>", "<br"} {
		if strings.Contains(head, tag) {
			return true
		}
	}
	return false
}

// ExtractMainText parses HTML and returns the posting body as text. Block
// elements become line breaks and list items become "- " bullets.
func ExtractMainText(html string) (string, error) {
	return ExtractText(html, postingSelectors, nil)
}

// ExtractText is ExtractMainText with caller-chosen selectors. The first
// content selector that matches wins; body is used when none do. Elements
// matching noise are removed first.
func ExtractText(html string, content, noise []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, form, .ad, .advertisement, .sidebar, .cookie-banner, .popup").Remove()
	if len(noise) > 0 {
		doc.Find(strings.Join(noise, ", ")).Remove()
	}

	var main *goquery.Selection
	for _, selector := range content {
		if selection := doc.Find(selector); selection.Length() > 0 {
			main = selection.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	main.Find("li").Each(func(_ int, li *goquery.Selection) {
		li.PrependHtml("\n- ")
	})
	main.Find("br").ReplaceWithHtml("\n")
	main.Find("p, div, h1, h2, h3, h4, h5, h6, ul, ol, section, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(main.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" && line != "-" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}

// PageTitle returns the first h1, or the document title when there is none.
func PageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return strings.Join(strings.Fields(h1), " ")
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}
