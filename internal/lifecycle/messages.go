package lifecycle

// User-facing messages. Gating messages are set without a lifecycle transition;
// the rest become ClassifiedError.Message on a failed attempt.
const (
	MessageEmptyURL           = "Please enter a website URL."
	MessageMalformedURL       = "Please enter a valid URL (starting with http://, https:// or www.)."
	MessageTimeout            = "The scan took too long to complete. Please try again."
	MessageServerError        = "The scanning service encountered an internal error. Please try again later."
	MessageValidationRejected = "The scanning service rejected the request. Please check the URL and try again."
	MessageUnknown            = "An unexpected error occurred. Please try again."
)
