package itinerary

import (
	"errors"
	"fmt"
	"strings"

	"myitinerary/internal/ai"
)

// User-facing validation messages.
const (
	MsgAllFieldsRequired  = "All fields are required to proceed."
	MsgEndBeforeStart     = "End date cannot be earlier than start date."
	MsgAdjustmentRequired = "Please provide adjustment details"
	MsgInvalidBudget      = "Please enter a valid budget amount."
	MsgNoItinerary        = "There is no itinerary to adjust yet."
)

var errNotObject = errors.New("reply is not a JSON object")

// ValidationError is reported before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Message: MsgAllFieldsRequired}
}

// ExtractionError means the reply text could not be parsed as a JSON object.
// Raw carries the untouched reply for diagnostics.
type ExtractionError struct {
	Raw string
	Err error
}

func (e *ExtractionError) Error() string {
	return "extraction: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// SchemaDriftError means the reply parsed as JSON but does not have the requested shape.
// Err is set when the typed decode failed; Issues when strict inspection rejected it.
type SchemaDriftError struct {
	Issues []DriftIssue
	Err    error
}

func (e *SchemaDriftError) Error() string {
	if e.Err != nil {
		return "schema drift: " + e.Err.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.String())
	}
	return "schema drift: " + strings.Join(parts, "; ")
}

func (e *SchemaDriftError) Unwrap() error {
	return e.Err
}

type Kind string

const (
	KindNone        Kind = ""
	KindValidation  Kind = "validation"
	KindTransport   Kind = "transport"
	KindExtraction  Kind = "extraction"
	KindSchemaDrift Kind = "schema_drift"
	KindUnknown     Kind = "unknown"
)

// KindOf classifies err into the planner's error taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ve *ValidationError
	var te *ai.TransportError
	var ee *ExtractionError
	var se *SchemaDriftError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &te):
		return KindTransport
	case errors.As(err, &ee):
		return KindExtraction
	case errors.As(err, &se):
		return KindSchemaDrift
	}
	return KindUnknown
}
