package partition

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// Element is one structured unit of extracted document content, as
// returned by the partition service. Only the fields this adapter reads
// are declared; the service returns more.
type Element struct {
	Type      string          `json:"type"`
	ElementID string          `json:"element_id"`
	Text      string          `json:"text"`
	Metadata  ElementMetadata `json:"metadata"`
}

// ElementMetadata is the per-element metadata subset the adapter uses.
type ElementMetadata struct {
	Filename   string   `json:"filename,omitempty"`
	PageNumber int      `json:"page_number,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	TextAsHTML string   `json:"text_as_html,omitempty"`
}

// renderer flattens elements to their string form. When table rendering
// is enabled, elements carrying table HTML are converted to Markdown;
// the HTML is sanitized first since it comes from a remote service.
type renderer struct {
	tablesAsMarkdown bool
	sanitizer        *bluemonday.Policy
	mdConverter      *converter.Converter
}

func newRenderer(tablesAsMarkdown bool) *renderer {
	r := &renderer{tablesAsMarkdown: tablesAsMarkdown}
	if tablesAsMarkdown {
		r.sanitizer = bluemonday.UGCPolicy()
		r.mdConverter = converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		)
	}
	return r
}

// render returns the element's string form. Default is the element
// text; with table rendering on, table HTML becomes Markdown, falling
// back to the plain text if conversion fails or produces nothing.
func (r *renderer) render(el Element) string {
	if r.tablesAsMarkdown && el.Metadata.TextAsHTML != "" {
		return r.htmlToMarkdown(el.Metadata.TextAsHTML, el.Text)
	}
	return el.Text
}

func (r *renderer) htmlToMarkdown(html, fallback string) string {
	clean := r.sanitizer.Sanitize(html)
	result, err := r.mdConverter.ConvertString(clean)
	if err != nil || strings.TrimSpace(result) == "" {
		return fallback
	}
	return strings.TrimSpace(result)
}

// joinText renders every element and joins them with a blank line.
func (r *renderer) joinText(elements []Element) string {
	parts := make([]string, len(elements))
	for i, el := range elements {
		parts[i] = r.render(el)
	}
	return strings.Join(parts, "\n\n")
}
