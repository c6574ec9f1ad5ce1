package cms

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// HTML renders the page body to sanitized HTML. Markdown bodies go through
// the converter first; "html" bodies are sanitized as-is.
func (p ContentPage) HTML() (template.HTML, error) {
	if p.Format == "html" {
		return template.HTML(sanitizer.Sanitize(p.Body)), nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(p.Body), &buf); err != nil {
		return "", err
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}
