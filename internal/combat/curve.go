package combat

// Curve is a piecewise-linear function defined by ordered keyframes.
// Weapons author two of these: range → hit-chance multiplier and
// elevation → accuracy bonus. Evaluation is pure: the same curve and
// input always produce the same output, which keeps combat resolution
// deterministic and testable.
type Curve struct {
	keys []Keyframe
}

// Keyframe is a single (input, output) control point.
type Keyframe struct {
	In  float64
	Out float64
}

// NewCurve builds a curve from keyframes, sorting them by input.
// Weapon validation guarantees at least one keyframe before a curve
// reaches the evaluator; an empty curve here is a broken upstream
// invariant and Evaluate will panic on it.
func NewCurve(keys ...Keyframe) Curve {
	sorted := make([]Keyframe, len(keys))
	copy(sorted, keys)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].In < sorted[j-1].In; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return Curve{keys: sorted}
}

// FlatCurve returns a single-keyframe curve that evaluates to v everywhere.
func FlatCurve(v float64) Curve {
	return NewCurve(Keyframe{In: 0, Out: v})
}

// Len returns the number of keyframes.
func (c Curve) Len() int { return len(c.keys) }

// Keys returns a copy of the keyframes in input order.
func (c Curve) Keys() []Keyframe {
	out := make([]Keyframe, len(c.keys))
	copy(out, c.keys)
	return out
}

// Evaluate returns the curve value at x: linear interpolation between the
// bracketing keyframes, extrapolating past either edge by continuing the
// slope of the nearest segment (flat when only one keyframe exists).
func (c Curve) Evaluate(x float64) float64 {
	if len(c.keys) == 0 {
		panic("combat: Evaluate on empty curve")
	}
	if len(c.keys) == 1 {
		return c.keys[0].Out
	}

	first := c.keys[0]
	last := c.keys[len(c.keys)-1]
	switch {
	case x <= first.In:
		return lerpSegment(first, c.keys[1], x)
	case x >= last.In:
		return lerpSegment(c.keys[len(c.keys)-2], last, x)
	}

	// Find the bracketing segment. Curves hold a handful of keys, so a
	// linear scan beats binary search bookkeeping.
	for i := 1; i < len(c.keys); i++ {
		if x <= c.keys[i].In {
			return lerpSegment(c.keys[i-1], c.keys[i], x)
		}
	}
	return last.Out // unreachable
}

// lerpSegment interpolates (or extrapolates) along the line through a and b.
func lerpSegment(a, b Keyframe, x float64) float64 {
	dx := b.In - a.In
	if dx == 0 {
		return a.Out
	}
	t := (x - a.In) / dx
	return a.Out + (b.Out-a.Out)*t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
