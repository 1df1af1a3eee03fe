package specx

import "golang.org/x/exp/constraints"

// Min and Max are small generic helpers built on golang.org/x/exp/constraints
// rather than the stdlib "cmp" package.

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
