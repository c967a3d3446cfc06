package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/aleister1102/scanconsole/internal/common/errorwrapper"
	"github.com/aleister1102/scanconsole/internal/models"
	"github.com/charmbracelet/glamour"
)

const (
	// StyleAuto picks dark or light from the terminal background.
	StyleAuto = "auto"
	// StyleNoTTY renders without ANSI escapes.
	StyleNoTTY = "notty"

	defaultWordWrap = 100
)

// TextRendererOptions configures the terminal renderer.
type TextRendererOptions struct {
	Style    string
	WordWrap int
}

// TextRenderer writes results and classified errors for the terminal.
type TextRenderer struct {
	summary *glamour.TermRenderer
}

// NewTextRenderer builds the glamour renderer used for the summary.
func NewTextRenderer(opts TextRendererOptions) (*TextRenderer, error) {
	wrap := opts.WordWrap
	if wrap <= 0 {
		wrap = defaultWordWrap
	}

	styleOpt := glamour.WithStandardStyle(StyleNoTTY)
	switch opts.Style {
	case "":
	case StyleAuto:
		styleOpt = glamour.WithAutoStyle()
	default:
		styleOpt = glamour.WithStandardStyle(opts.Style)
	}

	term, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create summary renderer")
	}
	return &TextRenderer{summary: term}, nil
}

// RenderState writes whatever a terminal lifecycle state has to show. Idle and
// Pending write nothing.
func (r *TextRenderer) RenderState(w io.Writer, state models.LifecycleState) error {
	switch {
	case state.Status == models.LifecycleSucceeded:
		return r.RenderResult(w, state.Result)
	case state.Status == models.LifecycleFailed && state.Error != nil:
		return r.RenderError(w, *state.Error)
	default:
		return nil
	}
}

// RenderError writes the classified message.
func (r *TextRenderer) RenderError(w io.Writer, classified models.ClassifiedError) error {
	_, err := fmt.Fprintf(w, "✗ Scan failed (%s): %s\n", strings.ToLower(strings.ReplaceAll(string(classified.Kind), "_", " ")), classified.Message)
	return err
}

// RenderResult writes every present section followed by the summary.
func (r *TextRenderer) RenderResult(w io.Writer, result *models.ScanResult) error {
	report := BuildReport(result)
	if report.IsEmpty() {
		_, err := fmt.Fprintln(w, "The scan completed but returned no findings.")
		return err
	}

	var b strings.Builder
	for _, section := range report.Sections {
		fmt.Fprintf(&b, "== %s ==\n", section.Title)
		switch {
		case section.SSL != nil:
			writeSSL(&b, section.SSL)
		case section.Vulnerabilities != nil:
			writeVulnerabilities(&b, section.Vulnerabilities)
		case section.Headers != nil:
			writeHeaders(&b, section.Headers)
		default:
			for _, line := range strings.Split(section.PrettyRaw(), "\n") {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
		b.WriteString("\n")
	}

	if report.Summary != "" {
		b.WriteString("== Summary ==\n")
		rendered, err := r.summary.Render(report.Summary)
		if err != nil {
			// fall back to the raw markdown rather than losing the summary
			rendered = report.Summary + "\n"
		}
		b.WriteString(rendered)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSSL(b *strings.Builder, ssl *SSLFindings) {
	status := "invalid"
	if ssl.Valid {
		status = "valid"
	}
	fmt.Fprintf(b, "  Status:  %s\n", status)
	if ssl.Domain != "" {
		fmt.Fprintf(b, "  Domain:  %s\n", ssl.Domain)
	}
	if ssl.Issuer != "" {
		fmt.Fprintf(b, "  Issuer:  %s\n", ssl.Issuer)
	}
	if ssl.DaysUntilExpiry != nil {
		fmt.Fprintf(b, "  Expires: in %d days\n", *ssl.DaysUntilExpiry)
	}
	if ssl.Error != "" {
		fmt.Fprintf(b, "  Error:   %s\n", ssl.Error)
	}
	writeList(b, "Issues", ssl.Issues)
}

func writeVulnerabilities(b *strings.Builder, v *VulnerabilityFindings) {
	if v.RiskLevel != "" || v.SecurityScore != nil {
		fmt.Fprintf(b, "  Risk:    %s (score %s)\n", orNA(v.RiskLevel), formatScore(v.SecurityScore))
	}
	if v.Error != "" {
		fmt.Fprintf(b, "  Error:   %s\n", v.Error)
	}
	if len(v.Vulnerabilities) == 0 {
		b.WriteString("  No vulnerabilities reported.\n")
		return
	}
	for _, vuln := range v.Vulnerabilities {
		fmt.Fprintf(b, "  [%s] %s: %s\n", strings.ToUpper(orNA(vuln.Severity)), vuln.Type, vuln.Description)
	}
}

func writeHeaders(b *strings.Builder, h *HeaderFindings) {
	if h.Grade != "" || h.SecurityScore != nil {
		fmt.Fprintf(b, "  Grade:   %s (score %s)\n", orNA(h.Grade), formatScore(h.SecurityScore))
	}
	if h.Error != "" {
		fmt.Fprintf(b, "  Error:   %s\n", h.Error)
	}
	if len(h.MissingHeaders) > 0 {
		b.WriteString("  Missing:\n")
		for _, m := range h.MissingHeaders {
			label := m.Header
			if m.Name != "" {
				label = fmt.Sprintf("%s (%s)", m.Name, m.Header)
			}
			if m.Importance != "" {
				label += ", " + m.Importance
			}
			fmt.Fprintf(b, "    - %s\n", label)
		}
	}
	writeList(b, "Recommendations", h.Recommendations)
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "    - %s\n", item)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
