// Package service implements the booking-to-invoice rules of the hall
// on top of narrow store interfaces. Every operation returns a tagged
// result envelope instead of letting errors cross into the transport
// layer, so handlers can render any outcome as a toast-sized message
// without a try/catch per call site.
package service

import "log"

// Kind classifies why an operation failed. It is not serialized; the
// HTTP layer maps it onto a status code while clients read Message.
type Kind int

const (
	// KindNone marks a successful result.
	KindNone Kind = iota
	// KindNotFound – a referenced table/order/booking/item id does not exist.
	KindNotFound
	// KindConflict – the action violates an invariant already in effect
	// (duplicate name, double booking, re-finalizing a paid order).
	KindConflict
	// KindInvalidReference – a request names an item id that does not resolve.
	KindInvalidReference
	// KindInvalid – malformed input rejected before any storage mutation.
	KindInvalid
	// KindUnauthorized – the actor lacks the required capability.
	KindUnauthorized
	// KindInternal – unexpected storage failure; cause logged, generic
	// message surfaced.
	KindInternal
)

// Result is the uniform envelope every core operation returns.
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data,omitempty"`
	Kind    Kind   `json:"-"`
}

func ok[T any](message string, data *T) Result[T] {
	return Result[T]{Success: true, Message: message, Data: data}
}

func fail[T any](kind Kind, message string) Result[T] {
	return Result[T]{Success: false, Message: message, Kind: kind}
}

// internalErr logs the cause and returns the generic failure envelope.
// Callers never see storage error text.
func internalErr[T any](op string, err error) Result[T] {
	log.Printf("%s: %v", op, err)
	return fail[T](KindInternal, "an unexpected error occurred")
}

// Actor is the capability value privileged operations require. It is
// supplied explicitly by the calling layer (from the verified JWT),
// never read from ambient state, so the core is testable without
// faking global session storage.
type Actor struct {
	UserID      uint64
	DisplayName string
	IsAdmin     bool
}
