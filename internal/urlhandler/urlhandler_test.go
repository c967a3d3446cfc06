package urlhandler

import (
	"errors"
	"testing"

	"github.com/aleister1102/scanconsole/internal/common/errorwrapper"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ValidationOutcome
	}{
		{name: "empty", input: "", expected: ValidationOutcome{Reason: ReasonEmpty}},
		{name: "whitespace only", input: " \t\n", expected: ValidationOutcome{Reason: ReasonEmpty}},
		{name: "bare domain", input: "example.com", expected: ValidationOutcome{Reason: ReasonMalformed}},
		{name: "ftp scheme", input: "ftp://example.com", expected: ValidationOutcome{Reason: ReasonMalformed}},
		{name: "scheme only", input: "https://", expected: ValidationOutcome{Reason: ReasonMalformed}},
		{name: "port without host", input: "http://:8080", expected: ValidationOutcome{Reason: ReasonMalformed}},
		{name: "space in host", input: "http://exa mple.com", expected: ValidationOutcome{Reason: ReasonMalformed}},
		{name: "https", input: "https://example.com", expected: ValidationOutcome{Valid: true, NormalizedURL: "https://example.com"}},
		{name: "http with path", input: "http://example.com/login?next=/", expected: ValidationOutcome{Valid: true, NormalizedURL: "http://example.com/login?next=/"}},
		{name: "upper case scheme", input: "HTTPS://Example.com", expected: ValidationOutcome{Valid: true, NormalizedURL: "HTTPS://Example.com"}},
		{name: "www prefix", input: "www.example.com", expected: ValidationOutcome{Valid: true, NormalizedURL: "www.example.com"}},
		{name: "www prefix upper", input: "WWW.Example.com", expected: ValidationOutcome{Valid: true, NormalizedURL: "WWW.Example.com"}},
		{name: "trimmed", input: "  https://example.com  ", expected: ValidationOutcome{Valid: true, NormalizedURL: "https://example.com"}},
		{name: "www with bad host", input: "www.exa mple.com", expected: ValidationOutcome{Reason: ReasonMalformed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, Validate(tt.input), "validation must be repeatable")
		})
	}
}

func TestValidate_Err(t *testing.T) {
	assert.NoError(t, Validate("https://example.com").Err())
	assert.ErrorIs(t, Validate("").Err(), ErrEmptyURL)
	assert.ErrorIs(t, Validate("example.com").Err(), ErrMalformedURL)
	assert.True(t, errors.Is(Validate("example.com").Err(), errorwrapper.ErrInvalidInput))
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "example.com", StripScheme("https://example.com"))
	assert.Equal(t, "example.com/a", StripScheme("http://example.com/a"))
	assert.Equal(t, "Example.com", StripScheme("HTTPS://Example.com"))
	assert.Equal(t, "www.example.com", StripScheme("www.example.com"))
	assert.Equal(t, "http://example.com", StripScheme("https://http://example.com"))
}

func TestHasAcceptedPrefix(t *testing.T) {
	assert.True(t, HasAcceptedPrefix("Www.x"))
	assert.True(t, HasAcceptedPrefix("hTTp://x"))
	assert.False(t, HasAcceptedPrefix("wwwx.com"))
	assert.False(t, HasAcceptedPrefix("htt"))
}
