package reporter

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/aleister1102/scanconsole/internal/common/errorwrapper"
	"github.com/aleister1102/scanconsole/internal/models"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html.tmpl
var templatesFS embed.FS

const (
	resultTemplateName = "result.html.tmpl"
	errorTemplateName  = "error.html.tmpl"
)

type resultTemplateData struct {
	Report      Report
	SummaryHTML template.HTML
}

// HTMLRenderer renders result and error fragments for the web console.
type HTMLRenderer struct {
	templates *template.Template
	markdown  *MarkdownRenderer
	logger    zerolog.Logger
}

// NewHTMLRenderer parses the embedded templates.
func NewHTMLRenderer(logger zerolog.Logger) (*HTMLRenderer, error) {
	tmpl, err := template.New("").Funcs(GetTemplateFunctions()).ParseFS(templatesFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse result templates")
	}

	return &HTMLRenderer{
		templates: tmpl,
		markdown:  NewMarkdownRenderer(),
		logger:    logger.With().Str("component", "HTMLRenderer").Logger(),
	}, nil
}

// RenderResult writes the findings fragment.
func (r *HTMLRenderer) RenderResult(w io.Writer, result *models.ScanResult) error {
	report := BuildReport(result)

	summaryHTML, err := r.markdown.ToHTML(report.Summary)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to render summary markdown, showing plain text")
		summaryHTML = template.HTML(template.HTMLEscapeString(report.Summary))
	}

	return r.templates.ExecuteTemplate(w, resultTemplateName, resultTemplateData{
		Report:      report,
		SummaryHTML: summaryHTML,
	})
}

// RenderError writes the classified error fragment.
func (r *HTMLRenderer) RenderError(w io.Writer, classified models.ClassifiedError) error {
	return r.templates.ExecuteTemplate(w, errorTemplateName, classified)
}

// RenderState renders the fragment for a terminal state and "" otherwise.
func (r *HTMLRenderer) RenderState(state models.LifecycleState) (string, error) {
	var buf bytes.Buffer
	var err error
	switch {
	case state.Status == models.LifecycleSucceeded:
		err = r.RenderResult(&buf, state.Result)
	case state.Status == models.LifecycleFailed && state.Error != nil:
		err = r.RenderError(&buf, *state.Error)
	default:
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
