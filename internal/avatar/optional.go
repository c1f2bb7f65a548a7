package avatar

// Optional is a three-state field: absent, explicitly null, or a value.
//
// Payloads from different endpoints disagree about which fields they carry.
// The overlay-merge rule needs to distinguish "caller never sent this field"
// (absent) from "caller explicitly cleared it" (null), so collapsing to a
// pointer would lose information. The zero Optional is absent.
type Optional[T any] struct {
	val     T
	defined bool // field was sent, possibly as null
	present bool // field carries a value
}

// Value returns an Optional carrying v.
func Value[T any](v T) Optional[T] {
	return Optional[T]{val: v, defined: true, present: true}
}

// Null returns an Optional that was explicitly sent as null.
func Null[T any]() Optional[T] {
	return Optional[T]{defined: true}
}

// None returns an absent Optional (the field was never sent).
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Defined reports whether the field was sent at all, even as null.
// This is the overlay-merge test: a defined overlay field always replaces
// the caller-supplied one.
func (o Optional[T]) Defined() bool {
	return o.defined
}

// IsNull reports whether the field was sent as an explicit null.
func (o Optional[T]) IsNull() bool {
	return o.defined && !o.present
}

// Get returns the value and whether one is present.
func (o Optional[T]) Get() (T, bool) {
	return o.val, o.present
}
