package combat

import "fmt"

// --- Weapon definition ---

// WeaponDefinition is the static, authored configuration for one weapon.
// Instances are validated once at load time and treated as read-only for
// the lifetime of a match; combat code never mutates them.
type WeaponDefinition struct {
	ID   string
	Name string

	// ShotsPerBurst is the number of independent hit rolls per attack
	// resolution. FireRate is bursts per second and only affects external
	// cooldown timing, never per-shot math.
	ShotsPerBurst int
	FireRate      float64

	BaseHitChance float64 // [0, 1]
	BaseDamage    float64 // > 0

	// EffectiveRange is the distance the curves are authored against
	// (normalized input 1.0). MaxRange is the hard firing limit.
	EffectiveRange float64
	MaxRange       float64

	// RangeHitCurve maps normalized distance (0 = point-blank,
	// 1 = effective range) to a multiplier on hit chance.
	RangeHitCurve Curve
	// ElevationHitCurve maps normalized height difference (attacker above
	// target is positive) to an accuracy adjustment. Its output is clamped
	// to ±maxElevationEffect by the consuming code regardless of authoring.
	ElevationHitCurve Curve
}

// maxElevationEffect bounds the weapon elevation curve's contribution.
// Authored curves may exceed it; the consumer clamps.
const maxElevationEffect = 0.5

// Validate checks the authoring invariants and returns (ok, problems).
// It runs at load time, never during combat; a weapon that fails here must
// be rejected before it can reach a resolver.
func (w *WeaponDefinition) Validate() (bool, []string) {
	var problems []string
	if w.ID == "" {
		problems = append(problems, "weapon id must not be empty")
	}
	if w.Name == "" {
		problems = append(problems, "weapon display name must not be empty")
	}
	if w.ShotsPerBurst < 1 {
		problems = append(problems, fmt.Sprintf("shots per burst must be >= 1, got %d", w.ShotsPerBurst))
	}
	if w.FireRate <= 0 {
		problems = append(problems, fmt.Sprintf("fire rate must be > 0, got %g", w.FireRate))
	}
	if w.BaseHitChance < 0 || w.BaseHitChance > 1 {
		problems = append(problems, fmt.Sprintf("base hit chance must be in [0,1], got %g", w.BaseHitChance))
	}
	if w.BaseDamage <= 0 {
		problems = append(problems, fmt.Sprintf("base damage must be > 0, got %g", w.BaseDamage))
	}
	if w.EffectiveRange <= 0 {
		problems = append(problems, fmt.Sprintf("effective range must be > 0, got %g", w.EffectiveRange))
	}
	if w.MaxRange < w.EffectiveRange {
		problems = append(problems, fmt.Sprintf("max range (%g) must be >= effective range (%g)", w.MaxRange, w.EffectiveRange))
	}
	if w.RangeHitCurve.Len() == 0 {
		problems = append(problems, "range hit curve must have at least one keyframe")
	}
	if w.ElevationHitCurve.Len() == 0 {
		problems = append(problems, "elevation hit curve must have at least one keyframe")
	}
	return len(problems) == 0, problems
}

// HitChanceAtRange folds the base hit chance and the range curve at the
// given distance. Distance is normalized against the effective range; the
// curve extrapolates past 1.0 for the pot-shot band between effective and
// max range. The result is floored at 0 but not otherwise clamped — squad
// modifiers and the final [0.05, 0.95] clamp are the resolver's job.
func (w *WeaponDefinition) HitChanceAtRange(distance float64) float64 {
	norm := distance / w.EffectiveRange
	if norm < 0 {
		norm = 0
	}
	chance := w.BaseHitChance * w.RangeHitCurve.Evaluate(norm)
	if chance < 0 {
		return 0
	}
	return chance
}

// ElevationBonus evaluates the elevation curve at the given height
// difference, clamped to ±maxElevationEffect.
func (w *WeaponDefinition) ElevationBonus(heightDiff float64) float64 {
	return clamp(w.ElevationHitCurve.Evaluate(heightDiff), -maxElevationEffect, maxElevationEffect)
}

// IsInRange reports whether the weapon can fire at all at this distance.
func (w *WeaponDefinition) IsInRange(distance float64) bool {
	return distance <= w.MaxRange
}

// IsInEffectiveRange reports whether the distance is inside the band the
// curves are authored for.
func (w *WeaponDefinition) IsInEffectiveRange(distance float64) bool {
	return distance <= w.EffectiveRange
}
