package util

import "golang.org/x/exp/constraints"

func Abs[T constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
