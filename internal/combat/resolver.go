package combat

import (
	"math/rand"
	"time"
)

// --- Combat constants ---

const (
	// minHitChance / maxHitChance clamp the final hit chance for every
	// shot: a unit always has at least a 5% chance to hit and a 5% chance
	// to miss, no matter how extreme the stacked modifiers get.
	minHitChance = 0.05
	maxHitChance = 0.95

	// maxElevationRange is the height difference (world units) that maps
	// to the elevation curve's normalized input of ±1. Larger differences
	// clamp; the curves are authored against this domain.
	maxElevationRange = 10.0
)

// Roller is the resolver's source of uniform randomness. *rand.Rand
// satisfies it; tests inject scripted sequences to pin outcomes exactly.
type Roller interface {
	Float64() float64
}

// Resolver owns the random source for shot resolution. Everything else it
// touches is passed per call, so one resolver can serve any number of
// engagements as long as calls stay serialized.
type Resolver struct {
	rng Roller
}

// NewResolver creates a resolver with a seeded RNG for deterministic,
// replayable resolution.
func NewResolver(seed int64) *Resolver {
	return &Resolver{rng: rand.New(rand.NewSource(seed))} // #nosec G404 -- game only
}

// NewResolverFrom creates a resolver using the given random source. A nil
// roller falls back to a time-seeded RNG.
func NewResolverFrom(r Roller) *Resolver {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- game only
	}
	return &Resolver{rng: r}
}

// --- Result ---

// CombatResult is the immutable record of one attack resolution. A fresh
// value is built per call and has no identity beyond it.
type CombatResult struct {
	ShotsFired      int     `json:"shots_fired"`
	ShotsHit        int     `json:"shots_hit"`
	TotalDamage     float64 `json:"total_damage"`
	TargetDestroyed bool    `json:"target_destroyed"`
}

// EmptyResult is the zero-valued outcome returned for guarded inputs
// (absent or dead participants). It is a valid combat outcome — "nothing
// happened" — not an error.
var EmptyResult = CombatResult{}

// Accuracy returns hits over shots fired, 0 when nothing was fired.
func (r CombatResult) Accuracy() float64 {
	if r.ShotsFired == 0 {
		return 0
	}
	return float64(r.ShotsHit) / float64(r.ShotsFired)
}

// AverageDamagePerShot returns total damage over shots fired, 0 when
// nothing was fired.
func (r CombatResult) AverageDamagePerShot() float64 {
	if r.ShotsFired == 0 {
		return 0
	}
	return r.TotalDamage / float64(r.ShotsFired)
}

// AverageDamagePerHit returns total damage over shots hit, 0 when nothing
// connected.
func (r CombatResult) AverageDamagePerHit() float64 {
	if r.ShotsHit == 0 {
		return 0
	}
	return r.TotalDamage / float64(r.ShotsHit)
}

// --- Hit chance / damage math (shared with AI utilities) ---

// FinalHitChance computes the per-shot hit chance for attacker firing
// weapon at target, after every modifier stage and the final clamp:
//
//  1. base hit chance × range curve (weapon.HitChanceAtRange)
//  2. × weapon elevation curve as a multiplier, evaluated at the
//     normalized height difference
//  3. × squad hit-chance multiplier
//  4. + squad flat elevation bonus
//  5. clamped to [minHitChance, maxHitChance]
//
// Steps 2 and 4 both derive from elevation and that is intentional: the
// per-weapon elevation curve and the per-squad elevation bonus are
// separate game-design levers, one multiplicative and one additive.
func FinalHitChance(attacker, target *Unit, weapon *WeaponDefinition) float64 {
	distance := attacker.Position.GroundDistance(target.Position)
	elevationDiff := attacker.Position.HeightAbove(target.Position)

	chance := weapon.HitChanceAtRange(distance)

	// The raw curve value is the multiplier here. The ±0.5 clamp on
	// WeaponDefinition.ElevationBonus applies only when the curve is read
	// as an additive bonus; multiplier-style curves are authored around
	// 1.0 and a flat 1.0 curve must leave hit chance untouched.
	elevationMod := weapon.ElevationHitCurve.Evaluate(clamp(elevationDiff/maxElevationRange, -1, 1))
	chance *= elevationMod

	chance *= attacker.hitChanceMultiplier()
	chance += attacker.elevationBonusFlat()

	return clamp(chance, minHitChance, maxHitChance)
}

// DamagePerHit returns the raw damage a single connecting shot carries:
// weapon base damage scaled by the attacker's squad damage multiplier.
// Armor reduction happens on the target side, in ApplyDamage.
func DamagePerHit(attacker *Unit, weapon *WeaponDefinition) float64 {
	return weapon.BaseDamage * attacker.damageMultiplier()
}

// ExpectedDPS estimates sustained damage per second for AI decision-making:
// shots per burst × hit chance × damage per hit × bursts per second. It
// shares the resolver's math but rolls nothing.
func ExpectedDPS(attacker, target *Unit, weapon *WeaponDefinition) float64 {
	if attacker == nil || target == nil || weapon == nil {
		return 0
	}
	chance := FinalHitChance(attacker, target, weapon)
	return float64(weapon.ShotsPerBurst) * chance * DamagePerHit(attacker, weapon) * weapon.FireRate
}

// --- Resolution ---

// ResolveCombat resolves one full burst from attacker against target.
//
// Guards: an absent attacker, target, or weapon, or either unit not alive,
// yields EmptyResult — never an error.
//
// Each shot in the burst rolls an independent uniform sample; a hit
// applies damage to the target immediately. When a hit destroys the
// target the remaining shots are never rolled, but ShotsFired still
// reports the weapon's configured burst length: that is the attempted
// burst, and expected-accuracy bookkeeping depends on it.
func (rv *Resolver) ResolveCombat(attacker, target *Unit, weapon *WeaponDefinition) CombatResult {
	if attacker == nil || target == nil || weapon == nil {
		return EmptyResult
	}
	if !attacker.IsAlive() || !target.IsAlive() {
		return EmptyResult
	}

	hitChance := FinalHitChance(attacker, target, weapon)
	damagePerHit := DamagePerHit(attacker, weapon)

	result := CombatResult{ShotsFired: weapon.ShotsPerBurst}
	for shot := 0; shot < weapon.ShotsPerBurst; shot++ {
		if rv.rng.Float64() > hitChance {
			continue // miss
		}
		result.ShotsHit++
		result.TotalDamage += damagePerHit
		target.State.ApplyDamage(damagePerHit)
		if !target.IsAlive() {
			result.TargetDestroyed = true
			break
		}
	}
	return result
}
