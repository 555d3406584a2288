package utils

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var (
	extraBlankLines = regexp.MustCompile(`\n{4,}`)
	md              = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

// CleanMarkdown strips outer markdown code blocks and runs of blank lines.
// It ensures the output is pure Markdown ready for rendering.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(input, "\r\n", "\n"))

	// Strip outer wrapping code blocks if present (e.g. ```markdown ... ```)
	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		// Generic code block strip
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	// Two blank lines are kept before headers; more are noise.
	return extraBlankLines.ReplaceAllString(cleaned, "\n\n\n")
}

// RenderHTML converts Markdown to HTML with GitHub flavoured extensions.
func RenderHTML(input string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(input), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Headings returns the text of every heading, in document order.
func Headings(input string) []string {
	source := []byte(input)
	doc := md.Parser().Parse(text.NewReader(source))

	var out []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			out = append(out, headingText(h, source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func headingText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			continue
		}
		sb.WriteString(headingText(c, source))
	}
	return sb.String()
}

// ValidateMarkdown reports whether input is non-empty Markdown with at least
// one section heading.
func ValidateMarkdown(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}
	return len(Headings(input)) > 0
}
