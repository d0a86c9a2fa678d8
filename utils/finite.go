package utils

import "math"

// IsFinite reports whether f is neither NaN nor infinite. Tracking providers
// occasionally emit garbage landmark coordinates; callers skip those points.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
