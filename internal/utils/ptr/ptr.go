// Package ptr provides helpers for optional values carried as pointers.
package ptr

// To creates a pointer to the given value.
func To[T any](v T) *T {
	return &v
}

// Value dereferences p, returning the zero value when p is nil.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// NonEmpty returns a pointer to s, or nil when s is empty.
// Empty table cells are read as missing values.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
