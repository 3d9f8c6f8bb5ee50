package utils

import "golang.org/x/exp/constraints"

// Clamp limits v to the closed range [min, max]. The bounds may be given in
// either order.
func Clamp[T constraints.Ordered](v, min, max T) T {
	if min > max {
		min, max = max, min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ToDMX converts a normalised 0..1 level to a DMX channel value.
func ToDMX(level float64) byte {
	return byte(Clamp(level, 0, 1)*255 + 0.5)
}
