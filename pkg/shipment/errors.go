package shipment

import (
	"errors"
	"fmt"
)

// Kind identifies a failure class of the shipment core.
type Kind string

const (
	// KindRateFetch: the rate service reported an error, no shipment produced.
	KindRateFetch Kind = "RATE_FETCH"
	// KindStorageConflict: a create against the store failed for any reason.
	KindStorageConflict Kind = "STORAGE_CONFLICT"
	// KindStorageNotFound: a read against the store raised an error.
	KindStorageNotFound Kind = "STORAGE_NOT_FOUND"
	// KindRateOrchestration: fetching rates failed in the adapter or repository.
	KindRateOrchestration Kind = "RATE_ORCHESTRATION"
	// KindLookup: finding a shipment failed in the repository.
	KindLookup Kind = "LOOKUP"
)

// Error is a failure of the shipment core.
//
// Error does not unwrap to Cause: each layer translates the failure beneath
// it into its own kind, so errors.Is only ever matches the outermost kind.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is implements errors.Is for Error by comparing kinds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrRateFetch         = &Error{Kind: KindRateFetch, Message: "rate fetch failed"}
	ErrStorageConflict   = &Error{Kind: KindStorageConflict, Message: "storage conflict"}
	ErrStorageNotFound   = &Error{Kind: KindStorageNotFound, Message: "storage read failed"}
	ErrRateOrchestration = &Error{Kind: KindRateOrchestration, Message: "rate orchestration failed"}
	ErrLookup            = &Error{Kind: KindLookup, Message: "shipment lookup failed"}
)

// ErrAdapterNotFound indicates the requested rate adapter is not registered.
var ErrAdapterNotFound = errors.New("rate adapter not found")

// NewRateFetchError creates a KindRateFetch error carrying the rate service message.
func NewRateFetchError(message string) *Error {
	return &Error{Kind: KindRateFetch, Message: message}
}

// WrapRateFetchError creates a KindRateFetch error from a failed outbound call.
func WrapRateFetchError(err error) *Error {
	return &Error{Kind: KindRateFetch, Message: err.Error(), Cause: err}
}

// NewStorageConflictError relabels a failed create.
func NewStorageConflictError(err error) *Error {
	return &Error{Kind: KindStorageConflict, Message: err.Error(), Cause: err}
}

// NewStorageNotFoundError relabels a failed read.
func NewStorageNotFoundError(err error) *Error {
	return &Error{Kind: KindStorageNotFound, Message: err.Error(), Cause: err}
}

// NewRateOrchestrationError wraps an adapter or repository failure of FetchRates.
func NewRateOrchestrationError(err error) *Error {
	return &Error{
		Kind:    KindRateOrchestration,
		Message: fmt.Sprintf("error getting shipment rates: %s", err.Error()),
		Cause:   err,
	}
}

// NewLookupError wraps a repository failure of FindShipment.
func NewLookupError(err error) *Error {
	return &Error{
		Kind:    KindLookup,
		Message: fmt.Sprintf("error finding shipment: %s", err.Error()),
		Cause:   err,
	}
}

// KindOf returns the kind of err, or "" when err is not a shipment Error.
func KindOf(err error) Kind {
	var shipmentErr *Error
	if errors.As(err, &shipmentErr) {
		return shipmentErr.Kind
	}
	return ""
}
