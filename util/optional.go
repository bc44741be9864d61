package util

type Optional[T any] struct {
	value   T
	present bool
}

func NewOptional[T any](value T) Optional[T] {
	return Optional[T]{value: value, present: true}
}

func (o *Optional[T]) Set(value T) {
	o.value = value
	o.present = true
}

func (o *Optional[T]) Present() bool {
	return o.present
}

// MustGet panics if no value is present.
func (o *Optional[T]) MustGet() T {
	Assert(o.present, "Optional.MustGet: no value present")
	return o.value
}

func (o *Optional[T]) GetOr(defaultValue T) T {
	if o.present {
		return o.value
	}
	return defaultValue
}
