package utils

import (
	"golang.org/x/exp/constraints"
)

// EqualSlice checks the equality between two slices of comparable values.
// The comparison is not short-circuited, so that it runs in time independent
// of the position of the first difference.
func EqualSlice[V comparable](a, b []V) (v bool) {
	if len(a) != len(b) {
		return false
	}
	v = true
	for i := range a {
		v = (a[i] == b[i]) && v
	}
	return
}

// Zeroize overwrites every element of s with the zero value.
func Zeroize[V constraints.Integer | constraints.Float](s []V) {
	for i := range s {
		s[i] = 0
	}
}

// AllDistinct returns true if all elements in s are distinct, and false otherwise.
func AllDistinct[V comparable](s []V) bool {
	m := make(map[V]struct{}, len(s))
	for _, si := range s {
		if _, exists := m[si]; exists {
			return false
		}
		m[si] = struct{}{}
	}
	return true
}
