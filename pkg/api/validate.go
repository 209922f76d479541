package api

import "fmt"

// Validator checks a value against a declared contract. Parse returns
// the (possibly normalized) value, or an error when the value does not
// satisfy the contract. Implementations must be pure: parsing the same
// well-formed value twice yields equal results.
type Validator interface {
	Parse(v any) (any, error)
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(v any) (any, error)

func (f ValidatorFunc) Parse(v any) (any, error) { return f(v) }

// TypeOf returns a Validator that requires values assignable to T and
// passes them through unchanged.
func TypeOf[T any]() Validator {
	return ValidatorFunc(func(v any) (any, error) {
		t, ok := v.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("expected %T, got %T", zero, v)
		}
		return t, nil
	})
}

// NonNil returns a Validator that rejects nil values and passes
// everything else through unchanged.
func NonNil() Validator {
	return ValidatorFunc(func(v any) (any, error) {
		if v == nil {
			return nil, fmt.Errorf("value must not be nil")
		}
		return v, nil
	})
}
