package domain

import "fmt"

// ErrorKind classifies an explorer API failure. The engine surfaces every
// failure as an APIError; the kind is machine-readable while Message keeps
// the legacy human-readable text used for logging.
type ErrorKind string

const (
	// ErrTransport covers network errors, timeouts and non-2xx responses.
	ErrTransport ErrorKind = "transport"
	// ErrFormat means the provider answered but the payload lacked the
	// expected transaction-list shape.
	ErrFormat ErrorKind = "format"
	// ErrConfirmations means a transaction was found but its confirmation
	// count could not be derived.
	ErrConfirmations ErrorKind = "confirmations"
	// ErrNoData means normalization yielded zero transactions without an
	// explicit valid-empty marker from the provider.
	ErrNoData ErrorKind = "no_data"
)

// APIError is the typed failure value returned by the explorer client.
type APIError struct {
	Kind     ErrorKind
	Provider string
	Message  string
}

func (e *APIError) Error() string {
	if e.Provider == "" {
		return e.Message
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Provider)
}

// NewAPIError builds an APIError annotated with the provider identifier.
func NewAPIError(kind ErrorKind, provider, message string) *APIError {
	return &APIError{Kind: kind, Provider: provider, Message: message}
}
