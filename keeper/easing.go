package keeper

// EaseInOutQuad is a symmetric quadratic ease: slow start, slow finish.
func EaseInOutQuad(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 2 * t * t
	}
	d := -2*t + 2
	return 1 - d*d/2
}

// EaseOutBounce is the standard four-segment piecewise quadratic bounce,
// a decaying oscillation that ends exactly at 1.
func EaseOutBounce(t float64) float64 {
	t = clamp01(t)
	const n1 = 7.5625
	const d1 = 2.75
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
