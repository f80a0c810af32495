package webhook

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrQueueClosed is returned by Dequeue once the queue has been closed
var ErrQueueClosed = errors.New("queue closed")

// ValidationError reports malformed subscription or event input
type ValidationError struct {
	// Problems maps a field name to what is wrong with it
	Problems map[string]string
}

// NewValidationError creates a ValidationError for a single field
func NewValidationError(field, problem string) *ValidationError {
	return &ValidationError{Problems: map[string]string{field: problem}}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Problems))
	for f := range e.Problems {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Problems[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError reports an unknown subscription id
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("subscription not found: %s", e.ID)
}

// UnknownEventTypeError reports an event type outside the vocabulary
type UnknownEventTypeError struct {
	Type string
}

func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf("unknown event type: %s", e.Type)
}

/* DeliveryError is a transient failure of a single delivery attempt
 * StatusCode is zero when no HTTP response was received
 */
type DeliveryError struct {
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("delivery failed: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the attempt failed because of a timeout
func (e *DeliveryError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// IsNotFound checks if err is, or wraps, a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation checks if err is, or wraps, a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUnknownEventType checks if err is, or wraps, an UnknownEventTypeError
func IsUnknownEventType(err error) bool {
	var ue *UnknownEventTypeError
	return errors.As(err, &ue)
}
