// Package itemmodel validates inbound create/update payloads and carries
// the update semantics spec §4.2 describes: only fields present in a
// payload are mutated, and an explicit null clears a nullable field rather
// than leaving it alone.
package itemmodel

// Patch represents one optional field in an update payload. Present is
// false when the caller omitted the field entirely (leave unchanged); when
// Present is true, a nil Value means the caller sent an explicit null
// (clear the field), and a non-nil Value carries the new value.
type Patch[T any] struct {
	Present bool
	Value   *T
}

// Set builds a Patch carrying a new value.
func Set[T any](v T) Patch[T] {
	return Patch[T]{Present: true, Value: &v}
}

// Clear builds a Patch representing an explicit null.
func Clear[T any]() Patch[T] {
	return Patch[T]{Present: true, Value: nil}
}

// Unset is the zero value: field absent from the payload, leave unchanged.
func Unset[T any]() Patch[T] {
	return Patch[T]{}
}
