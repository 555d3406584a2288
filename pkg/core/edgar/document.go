package edgar

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"filing_analyzer/pkg/core/cache"
)

// DocumentURL builds the archive URL of a filing's primary document.
func (c *Client) DocumentURL(cik, accession, primaryDoc string) string {
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s",
		c.wwwURL, unpadCIK(cik), strings.ReplaceAll(accession, "-", ""), primaryDoc)
}

// FetchDocumentText downloads a filing document and returns its visible text,
// truncated to maxChars runes when maxChars > 0.
func (c *Client) FetchDocumentText(ctx context.Context, cik, accession, primaryDoc string, maxChars int) (string, error) {
	if primaryDoc == "" {
		return "", fmt.Errorf("filing %s has no primary document", accession)
	}
	url := c.DocumentURL(cik, accession, primaryDoc)
	key := "sec_doc_" + strings.ReplaceAll(accession, "-", "") + "_" + primaryDoc

	body, err := c.fetchCached(ctx, url, key, cache.TTLCompanyFacts)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document %s: %w", url, err)
	}

	text, err := ExtractText(string(body))
	if err != nil {
		return "", err
	}
	return truncateRunes(text, maxChars), nil
}

// ExtractText strips markup, scripts, hidden elements and inline XBRL headers
// from an HTML filing and collapses whitespace.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse document HTML: %w", err)
	}

	doc.Find("script, style, [hidden], [style*='display:none'], [style*='display: none'], ix\\:header").Remove()

	// block elements would otherwise glue adjacent words together
	doc.Find("p, div, br, tr, li, h1, h2, h3, h4, h5, h6, td").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return strings.Join(strings.Fields(root.Text()), " "), nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
