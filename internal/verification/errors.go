package verification

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind separates failures the caller must treat differently.
type Kind int

const (
	// KindInvalidInput is a local validation failure; nothing was sent.
	KindInvalidInput Kind = iota + 1
	// KindBackendRejected means the backend answered with a non-success status.
	KindBackendRejected
	// KindTransport means the backend could not be reached or its answer
	// could not be read.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindBackendRejected:
		return "backend_rejected"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// GenericErrorMessage is shown for transport failures so the UI never
// implies the backend was reached.
const GenericErrorMessage = "Error interno del servidor"

// Error is returned by every verification operation.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Request-shape errors reported before any field is validated.
var (
	ErrMissingPhone  = invalidInput("El número de teléfono es requerido")
	ErrMissingFields = invalidInput("Teléfono y código son requeridos")
)

func invalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Status: http.StatusBadRequest, Message: msg}
}

// Rejected builds a KindBackendRejected error carrying the backend status.
func Rejected(status int, msg, details string) *Error {
	return &Error{Kind: KindBackendRejected, Status: status, Message: msg, Details: details}
}

// Transport wraps a network or decoding failure.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Status: http.StatusInternalServerError, Message: GenericErrorMessage, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return 0
}

func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}

func IsBackendRejected(err error) bool {
	return KindOf(err) == KindBackendRejected
}

func IsTransport(err error) bool {
	return KindOf(err) == KindTransport
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Message
	}
	return GenericErrorMessage
}
