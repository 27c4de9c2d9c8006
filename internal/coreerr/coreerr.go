// Package coreerr defines the typed error kinds every core entry point
// returns (spec §7), and the propagation policy that maps internal errors
// onto them for the protocol adapters.
package coreerr

import "errors"

// Kind identifies the category of a core failure.
type Kind string

const (
	KindInvalidType           Kind = "InvalidType"
	KindInvalidPriority       Kind = "InvalidPriority"
	KindInvalidDate           Kind = "InvalidDate"
	KindUnknownStatus         Kind = "UnknownStatus"
	KindUnknownItem           Kind = "UnknownItem"
	KindNotFound              Kind = "NotFound"
	KindEmbeddingDimMismatch  Kind = "EmbeddingDimMismatch"
	KindTimeout               Kind = "Timeout"
	KindStorageError          Kind = "StorageError"
	KindEnrichmentUnavailable Kind = "EnrichmentUnavailable"
	KindConflictingRelation   Kind = "ConflictingRelation"
	KindConflict              Kind = "Conflict"
	KindValidation            Kind = "ValidationError"
)

// Error is a core error carrying a wire-visible Kind, a human message, and
// optional structured details.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
}

func (e *Error) Error() string { return e.Message }

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithDetails attaches wire-visible detail fields.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// As extracts the *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, defaulting to KindStorageError for
// unrecognized errors per the propagation policy in spec §7.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindStorageError
}
