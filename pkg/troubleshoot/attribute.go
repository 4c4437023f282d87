package troubleshoot

// Key names an attribute and binds it to the type of its value.
// Keys with the same name but different types do not collide.
type Key[T any] struct {
	name string
}

// NewKey returns a key for values of type T.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

func (k Key[T]) String() string { return k.name }

// AddAttribute stores value under key, replacing any previous value.
func AddAttribute[T any](c *Context, key Key[T], value T) {
	c.attributes[key] = value
}

// GetAttribute returns the value stored under key. Absence means the value has
// not been determined on this run path yet.
func GetAttribute[T any](c *Context, key Key[T]) (T, bool) {
	v, ok := c.attributes[key]
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
