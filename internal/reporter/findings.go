package reporter

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/aleister1102/scanconsole/internal/models"
	"github.com/tidwall/gjson"
)

// SSLFindings is the displayable part of the "ssl" section.
type SSLFindings struct {
	Valid           bool
	Domain          string
	Issuer          string
	DaysUntilExpiry *int64
	Issues          []string
	Error           string
}

// Vulnerability is one entry of the "vulnerabilities" list.
type Vulnerability struct {
	Type        string
	Severity    string
	Description string
}

// VulnerabilityFindings is the displayable part of the "vulnerabilities" section.
type VulnerabilityFindings struct {
	Vulnerabilities []Vulnerability
	SecurityScore   *float64
	RiskLevel       string
	Error           string
}

// MissingHeader is a security header the target did not send.
type MissingHeader struct {
	Header     string
	Name       string
	Importance string
}

// HeaderFindings is the displayable part of the "security_headers" section.
type HeaderFindings struct {
	Grade           string
	SecurityScore   *float64
	MissingHeaders  []MissingHeader
	Recommendations []string
	Error           string
}

// Section is a check that was present in the result. For the known checks the
// matching typed field is set when the payload is an object; Raw always carries
// the original JSON.
type Section struct {
	Check           string
	Title           string
	SSL             *SSLFindings
	Vulnerabilities *VulnerabilityFindings
	Headers         *HeaderFindings
	Raw             json.RawMessage
}

// Typed reports whether a structured view was extracted.
func (s Section) Typed() bool {
	return s.SSL != nil || s.Vulnerabilities != nil || s.Headers != nil
}

// PrettyRaw returns Raw indented for display.
func (s Section) PrettyRaw() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, s.Raw, "", "  "); err != nil {
		return string(s.Raw)
	}
	return buf.String()
}

// Report is the renderer-neutral view of a scan result.
type Report struct {
	Sections []Section
	Summary  string
}

var knownChecks = []string{models.CheckSSL, models.CheckVulnerabilities, models.CheckSecurityHeaders}

var sectionTitles = map[string]string{
	models.CheckSSL:             "SSL Certificate",
	models.CheckVulnerabilities: "Vulnerabilities",
	models.CheckSecurityHeaders: "Security Headers",
}

// BuildReport extracts the known checks in a fixed order, skipping absent ones.
// Unknown checks follow in key order with only Raw set.
func BuildReport(result *models.ScanResult) Report {
	report := Report{}
	if result == nil {
		return report
	}
	report.Summary = strings.TrimSpace(result.Summary)

	for _, check := range knownChecks {
		raw, ok := result.Finding(check)
		if !ok {
			continue
		}
		section := Section{Check: check, Title: sectionTitles[check], Raw: raw}
		switch check {
		case models.CheckSSL:
			section.SSL = parseSSL(raw)
		case models.CheckVulnerabilities:
			section.Vulnerabilities = parseVulnerabilities(raw)
		case models.CheckSecurityHeaders:
			section.Headers = parseHeaders(raw)
		}
		report.Sections = append(report.Sections, section)
	}

	for _, check := range extraChecks(result) {
		raw, _ := result.Finding(check)
		report.Sections = append(report.Sections, Section{
			Check: check,
			Title: titleCase(strings.ReplaceAll(check, "_", " ")),
			Raw:   raw,
		})
	}

	return report
}

// IsEmpty reports whether there is nothing to show.
func (r Report) IsEmpty() bool {
	return len(r.Sections) == 0 && r.Summary == ""
}

func parseSSL(raw json.RawMessage) *SSLFindings {
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil
	}

	findings := &SSLFindings{
		Valid:  doc.Get("valid").Bool(),
		Domain: doc.Get("domain").String(),
		Issuer: issuerName(doc.Get("issuer")),
		Issues: stringList(doc.Get("issues")),
		Error:  doc.Get("error").String(),
	}
	if days := doc.Get("days_until_expiry"); days.Type == gjson.Number {
		v := days.Int()
		findings.DaysUntilExpiry = &v
	}
	return findings
}

// issuerName accepts a plain string or a distinguished-name object.
func issuerName(issuer gjson.Result) string {
	if issuer.Type == gjson.String {
		return issuer.String()
	}
	for _, key := range []string{"organizationName", "commonName", "O", "CN"} {
		if v := issuer.Get(key); v.Exists() {
			return v.String()
		}
	}
	return ""
}

func parseVulnerabilities(raw json.RawMessage) *VulnerabilityFindings {
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil
	}

	findings := &VulnerabilityFindings{
		RiskLevel:     doc.Get("risk_level").String(),
		Error:         doc.Get("error").String(),
		SecurityScore: numberField(doc, "security_score", "score"),
	}
	for _, item := range doc.Get("vulnerabilities").Array() {
		findings.Vulnerabilities = append(findings.Vulnerabilities, Vulnerability{
			Type:        item.Get("type").String(),
			Severity:    item.Get("severity").String(),
			Description: item.Get("description").String(),
		})
	}
	return findings
}

func parseHeaders(raw json.RawMessage) *HeaderFindings {
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil
	}

	findings := &HeaderFindings{
		Grade:           doc.Get("grade").String(),
		Recommendations: stringList(doc.Get("recommendations")),
		Error:           doc.Get("error").String(),
		SecurityScore:   numberField(doc, "security_score"),
	}
	for _, item := range doc.Get("missing_headers").Array() {
		if item.Type == gjson.String {
			findings.MissingHeaders = append(findings.MissingHeaders, MissingHeader{Header: item.String()})
			continue
		}
		findings.MissingHeaders = append(findings.MissingHeaders, MissingHeader{
			Header:     item.Get("header").String(),
			Name:       item.Get("name").String(),
			Importance: item.Get("importance").String(),
		})
	}
	return findings
}

func numberField(doc gjson.Result, keys ...string) *float64 {
	for _, key := range keys {
		if v := doc.Get(key); v.Type == gjson.Number {
			f := v.Float()
			return &f
		}
	}
	return nil
}

func stringList(list gjson.Result) []string {
	var out []string
	for _, item := range list.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func extraChecks(result *models.ScanResult) []string {
	var extras []string
	for check := range result.Results {
		if _, known := sectionTitles[check]; known {
			continue
		}
		if _, ok := result.Finding(check); ok {
			extras = append(extras, check)
		}
	}
	sort.Strings(extras)
	return extras
}
