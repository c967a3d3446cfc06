package models

// ErrorKind is the user-facing category of a failed scan attempt.
type ErrorKind string

const (
	ErrorKindTimeout            ErrorKind = "TIMEOUT"
	ErrorKindServerError        ErrorKind = "SERVER_ERROR"
	ErrorKindValidationRejected ErrorKind = "VALIDATION_REJECTED"
	ErrorKindUnknown            ErrorKind = "UNKNOWN"
)

// ClassifiedError is a transport failure normalized for display. It is built once per
// failed attempt and never mutated.
type ClassifiedError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e ClassifiedError) Error() string {
	return string(e.Kind) + ": " + e.Message
}
