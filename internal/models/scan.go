package models

import (
	"bytes"
	"encoding/json"
)

// Names of the checks the scanning service may report under "results".
const (
	CheckSSL             = "ssl"
	CheckVulnerabilities = "vulnerabilities"
	CheckSecurityHeaders = "security_headers"
)

// ScanInput is the raw text the user typed into the console.
type ScanInput struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// ScanRequest is the body POSTed to the scanning service. URL carries no scheme.
type ScanRequest struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// ScanResult is the scanning service's success payload. Each entry in Results is opaque
// and may be absent; Raw keeps the body exactly as received.
type ScanResult struct {
	Results map[string]json.RawMessage `json:"results"`
	Summary string                     `json:"summary"`
	Raw     json.RawMessage            `json:"-"`
}

// ParseScanResult decodes a success body, retaining the original bytes.
func ParseScanResult(body []byte) (*ScanResult, error) {
	var result ScanResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	result.Raw = append(json.RawMessage(nil), body...)
	return &result, nil
}

// Finding returns the findings for a check. JSON null counts as absent.
func (r *ScanResult) Finding(check string) (json.RawMessage, bool) {
	if r == nil || r.Results == nil {
		return nil, false
	}
	raw, ok := r.Results[check]
	if !ok || len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

// MarshalJSON re-emits the received body when there is one so nothing the console
// does not model is lost on the way to the browser.
func (r ScanResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type plain ScanResult
	return json.Marshal(plain(r))
}
