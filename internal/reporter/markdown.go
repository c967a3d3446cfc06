package reporter

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MarkdownRenderer turns the LLM summary into sanitized HTML. goldmark drops raw
// HTML from the source; bluemonday still filters the output because the summary
// is untrusted text.
type MarkdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewMarkdownRenderer creates a renderer with GitHub-flavoured extensions.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// ToHTML renders src. Empty input yields empty output.
func (m *MarkdownRenderer) ToHTML(src string) (template.HTML, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(m.policy.SanitizeBytes(buf.Bytes())), nil
}
