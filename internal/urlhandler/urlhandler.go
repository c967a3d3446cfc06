package urlhandler

import (
	"net/url"
	"strings"
)

// InvalidReason explains why Validate rejected an input.
type InvalidReason string

const (
	ReasonEmpty     InvalidReason = "EMPTY"
	ReasonMalformed InvalidReason = "MALFORMED"
)

// ValidationOutcome is either Valid with the trimmed input, or Invalid with a reason.
type ValidationOutcome struct {
	Valid         bool          `json:"valid"`
	NormalizedURL string        `json:"normalized_url,omitempty"`
	Reason        InvalidReason `json:"reason,omitempty"`
}

// Err maps the outcome onto ErrEmptyURL / ErrMalformedURL, nil when valid.
func (o ValidationOutcome) Err() error {
	if o.Valid {
		return nil
	}
	if o.Reason == ReasonEmpty {
		return ErrEmptyURL
	}
	return ErrMalformedURL
}

var acceptedPrefixes = []string{"http://", "https://", "www."}

// Validate applies the console's acceptance rule to raw user input. It performs no
// network access and returns the same outcome for the same input.
//
// The input must start (case-insensitively) with http://, https:// or www.; a www.
// input is parsed as http://<input>. The parsed URL must carry a host.
func Validate(raw string) ValidationOutcome {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ValidationOutcome{Reason: ReasonEmpty}
	}

	if !HasAcceptedPrefix(trimmed) {
		return ValidationOutcome{Reason: ReasonMalformed}
	}

	candidate := trimmed
	if hasPrefixFold(candidate, "www.") {
		candidate = "http://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return ValidationOutcome{Reason: ReasonMalformed}
	}

	return ValidationOutcome{Valid: true, NormalizedURL: trimmed}
}

// HasAcceptedPrefix reports whether s begins with http://, https:// or www., ignoring case.
func HasAcceptedPrefix(s string) bool {
	for _, p := range acceptedPrefixes {
		if hasPrefixFold(s, p) {
			return true
		}
	}
	return false
}

// StripScheme removes one leading http:// or https://, ignoring case. The scanning
// service expects bare hosts.
func StripScheme(s string) string {
	for _, scheme := range []string{"https://", "http://"} {
		if hasPrefixFold(s, scheme) {
			return s[len(scheme):]
		}
	}
	return s
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
