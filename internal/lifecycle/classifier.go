package lifecycle

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/aleister1102/scanconsole/internal/models"
	"github.com/aleister1102/scanconsole/internal/scanapi"
)

// classificationRule inspects a failure and either claims it or passes.
type classificationRule struct {
	name  string
	match func(err error, te *scanapi.TransportError) (models.ClassifiedError, bool)
}

// classificationRules are evaluated in order; the first match wins.
var classificationRules = []classificationRule{
	{name: "abort", match: matchAbort},
	{name: "server_error", match: matchStatus(http.StatusInternalServerError, models.ErrorKindServerError, MessageServerError)},
	{name: "validation_rejected", match: matchStatus(http.StatusUnprocessableEntity, models.ErrorKindValidationRejected, MessageValidationRejected)},
	{name: "detail", match: matchDetail},
}

// Classify converts an attempt failure into a ClassifiedError. It is pure and
// total: every error, including nil, maps to exactly one kind.
func Classify(err error) models.ClassifiedError {
	var te *scanapi.TransportError
	if !errors.As(err, &te) {
		te = nil
	}

	for _, rule := range classificationRules {
		if classified, ok := rule.match(err, te); ok {
			return classified
		}
	}

	return models.ClassifiedError{Kind: models.ErrorKindUnknown, Message: MessageUnknown}
}

func matchAbort(err error, te *scanapi.TransportError) (models.ClassifiedError, bool) {
	aborted := te != nil && te.Aborted
	if !aborted && err != nil {
		var netErr net.Error
		aborted = errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) ||
			(errors.As(err, &netErr) && netErr.Timeout())
	}
	if !aborted {
		return models.ClassifiedError{}, false
	}
	return models.ClassifiedError{Kind: models.ErrorKindTimeout, Message: MessageTimeout}, true
}

func matchStatus(status int, kind models.ErrorKind, message string) func(error, *scanapi.TransportError) (models.ClassifiedError, bool) {
	return func(_ error, te *scanapi.TransportError) (models.ClassifiedError, bool) {
		if te == nil || te.StatusCode != status {
			return models.ClassifiedError{}, false
		}
		return models.ClassifiedError{Kind: kind, Message: message}, true
	}
}

func matchDetail(_ error, te *scanapi.TransportError) (models.ClassifiedError, bool) {
	if te == nil || te.Detail == "" {
		return models.ClassifiedError{}, false
	}
	return models.ClassifiedError{Kind: models.ErrorKindUnknown, Message: te.Detail}, true
}
