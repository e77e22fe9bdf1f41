package combat

import (
	"math"
	"testing"
)

func TestCurveEvaluate_SingleKeyframeIsFlat(t *testing.T) {
	c := FlatCurve(0.75)
	for _, x := range []float64{-100, -1, 0, 0.5, 1, 100} {
		if got := c.Evaluate(x); got != 0.75 {
			t.Fatalf("flat curve at x=%.1f should be 0.75, got %.4f", x, got)
		}
	}
}

func TestCurveEvaluate_ExactKeyframes(t *testing.T) {
	c := NewCurve(Keyframe{0, 1.0}, Keyframe{1, 0.4}, Keyframe{2, 0.1})
	for _, tc := range []struct{ x, want float64 }{
		{0, 1.0}, {1, 0.4}, {2, 0.1},
	} {
		if got := c.Evaluate(tc.x); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("at x=%.1f expected %.2f, got %.4f", tc.x, tc.want, got)
		}
	}
}

func TestCurveEvaluate_InterpolatesBetweenKeyframes(t *testing.T) {
	c := NewCurve(Keyframe{0, 1.0}, Keyframe{1, 0.5})
	got := c.Evaluate(0.5)
	if math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("midpoint should be 0.75, got %.4f", got)
	}
}

func TestCurveEvaluate_ExtrapolatesEdgeSlopeBeyondLast(t *testing.T) {
	// Last segment falls 0.4 → 0.1 over [1, 2]; slope -0.3 per unit.
	c := NewCurve(Keyframe{0, 1.0}, Keyframe{1, 0.4}, Keyframe{2, 0.1})
	got := c.Evaluate(3)
	if math.Abs(got-(-0.2)) > 1e-9 {
		t.Fatalf("extrapolation should continue -0.3 slope to -0.2, got %.4f", got)
	}
}

func TestCurveEvaluate_ExtrapolatesEdgeSlopeBeforeFirst(t *testing.T) {
	// First segment rises 0.5 → 1.0 over [0, 1]; slope +0.5 per unit.
	c := NewCurve(Keyframe{0, 0.5}, Keyframe{1, 1.0})
	got := c.Evaluate(-1)
	if math.Abs(got-0.0) > 1e-9 {
		t.Fatalf("extrapolation before first keyframe should reach 0.0, got %.4f", got)
	}
}

func TestCurveEvaluate_UnsortedKeyframesAreSorted(t *testing.T) {
	c := NewCurve(Keyframe{2, 0.1}, Keyframe{0, 1.0}, Keyframe{1, 0.4})
	if got := c.Evaluate(0.5); math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("expected 0.7 at x=0.5 after sorting, got %.4f", got)
	}
}

func TestCurveEvaluate_DuplicateInputsDoNotDivideByZero(t *testing.T) {
	c := NewCurve(Keyframe{1, 0.2}, Keyframe{1, 0.8})
	got := c.Evaluate(1)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("duplicate keyframe inputs produced %v", got)
	}
}

func TestCurveEvaluate_Deterministic(t *testing.T) {
	c := NewCurve(Keyframe{0, 1.0}, Keyframe{0.7, 0.55}, Keyframe{1.5, 0.2})
	for _, x := range []float64{-0.3, 0, 0.35, 0.7, 1.1, 1.5, 4.0} {
		a := c.Evaluate(x)
		b := c.Evaluate(x)
		if a != b {
			t.Fatalf("evaluate at x=%.2f not pure: %.6f vs %.6f", x, a, b)
		}
	}
}

func TestCurveEvaluate_EmptyCurvePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("empty curve should panic — validation is supposed to reject it upstream")
		}
	}()
	var c Curve
	c.Evaluate(0)
}
