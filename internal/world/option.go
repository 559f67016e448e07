package world

// Option wraps transient player state whose absence is a meaningful,
// type-checked condition rather than a nil convention.
type Option[T any] struct {
	value   T
	present bool
}

// Some returns an option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, present: true}
}

// None returns an empty option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.present
}

// Present reports whether a value is held.
func (o Option[T]) Present() bool {
	return o.present
}
