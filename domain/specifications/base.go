package specifications

// Specification encapsulates a composable business rule as a predicate.
// Specifications are evaluated row-by-row in memory here; storage adapters
// may translate the well-known primitives into native query filters instead.
type Specification[T any] interface {
	// IsSatisfiedBy checks if the specification is satisfied by the candidate
	IsSatisfiedBy(candidate T) bool
}

type specFunc[T any] func(T) bool

func (f specFunc[T]) IsSatisfiedBy(candidate T) bool {
	return f(candidate)
}

// New creates a specification from a predicate function
func New[T any](predicate func(T) bool) Specification[T] {
	return specFunc[T](predicate)
}

// And creates a specification satisfied only when all parts are satisfied
func And[T any](specs ...Specification[T]) Specification[T] {
	return specFunc[T](func(candidate T) bool {
		for _, s := range specs {
			if !s.IsSatisfiedBy(candidate) {
				return false
			}
		}
		return true
	})
}

// Or creates a specification satisfied when at least one part is satisfied
func Or[T any](specs ...Specification[T]) Specification[T] {
	return specFunc[T](func(candidate T) bool {
		for _, s := range specs {
			if s.IsSatisfiedBy(candidate) {
				return true
			}
		}
		return false
	})
}

// Not creates a specification satisfied when the wrapped one is not
func Not[T any](spec Specification[T]) Specification[T] {
	return specFunc[T](func(candidate T) bool {
		return !spec.IsSatisfiedBy(candidate)
	})
}

// Nothing is satisfied by no candidate
func Nothing[T any]() Specification[T] {
	return specFunc[T](func(T) bool { return false })
}
