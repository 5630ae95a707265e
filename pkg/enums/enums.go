// Package enums holds the string-backed domain enums shared by the API,
// services, and the outbox. Values are persisted as text, so renaming a
// constant's value is a schema change.
package enums

import (
	"fmt"
	"slices"
)

func parse[T ~string](kind, value string, known []T) (T, error) {
	if v := T(value); slices.Contains(known, v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, value)
}
