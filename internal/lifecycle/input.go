package lifecycle

import (
	"strings"
	"sync"

	"github.com/aleister1102/scanconsole/internal/models"
	"github.com/aleister1102/scanconsole/internal/urlhandler"
)

// LiveIndicator is the per-keystroke acceptance hint next to the URL field.
type LiveIndicator string

const (
	IndicatorNone    LiveIndicator = "NONE"
	IndicatorValid   LiveIndicator = "VALID"
	IndicatorInvalid LiveIndicator = "INVALID"
)

// InputView is what the console shows for the input fields.
type InputView struct {
	URL       string                       `json:"url"`
	Prompt    string                       `json:"prompt"`
	Indicator LiveIndicator                `json:"indicator"`
	Outcome   urlhandler.ValidationOutcome `json:"outcome"`
}

// InputStage owns the ScanInput for one console session. It is never reset by the
// controller, so the fields survive across attempts.
type InputStage struct {
	mutex   sync.RWMutex
	input   models.ScanInput
	outcome urlhandler.ValidationOutcome
}

// NewInputStage starts with an empty URL and the given prompt.
func NewInputStage(defaultPrompt string) *InputStage {
	return &InputStage{
		input:   models.ScanInput{Prompt: defaultPrompt},
		outcome: urlhandler.Validate(""),
	}
}

// SetURL stores the raw text and recomputes the live outcome.
func (s *InputStage) SetURL(raw string) urlhandler.ValidationOutcome {
	outcome := urlhandler.Validate(raw)

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.input.URL = raw
	s.outcome = outcome
	return outcome
}

// SetPrompt stores the prompt verbatim.
func (s *InputStage) SetPrompt(prompt string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.input.Prompt = prompt
}

// Input returns a copy of the current fields.
func (s *InputStage) Input() models.ScanInput {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.input
}

// View returns the fields together with the live indicator.
func (s *InputStage) View() InputView {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return InputView{
		URL:       s.input.URL,
		Prompt:    s.input.Prompt,
		Indicator: liveIndicator(s.input.URL, s.outcome),
		Outcome:   s.outcome,
	}
}

// liveIndicator shows nothing for empty input; unlike gating it never produces a message.
func liveIndicator(raw string, outcome urlhandler.ValidationOutcome) LiveIndicator {
	switch {
	case strings.TrimSpace(raw) == "":
		return IndicatorNone
	case outcome.Valid:
		return IndicatorValid
	default:
		return IndicatorInvalid
	}
}
