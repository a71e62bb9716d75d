// Package options holds the functional option plumbing behind upk's load and
// compress settings.
package options

// Option configures a target of type T.
type Option[T any] interface {
	apply(T) error
}

// Func is an Option backed by a plain function. A nil Func does nothing.
type Func[T any] func(T) error

var _ Option[struct{}] = Func[struct{}](nil)

func (f Func[T]) apply(target T) error {
	if f == nil {
		return nil
	}

	return f(target)
}

// New wraps a setter that may reject its value.
func New[T any](fn func(T) error) Func[T] { return fn }

// NoError wraps a setter that cannot fail.
func NoError[T any](fn func(T)) Func[T] {
	return func(target T) error {
		fn(target)
		return nil
	}
}

// Apply runs opts against target in order, skipping nil entries, and returns
// the first error. Options before the failing one stay applied.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
