package utils

import "math"

// Clamp limits value to the [min, max] interval
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// WithinTolerance reports whether value lies within fraction*reference of reference.
// A zero reference only matches a zero value.
func WithinTolerance(value, reference, fraction float64) bool {
	if reference == 0 {
		return value == 0
	}
	return math.Abs(value-reference) <= math.Abs(reference)*fraction
}

// ApproxEqual reports whether two floats are equal within epsilon
func ApproxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
