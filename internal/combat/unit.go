package combat

import "math"

// --- World position ---

// Position is a world-space coordinate. X and Z span the ground plane;
// Y is height. Combat uses only the horizontal distance between two units
// and their height difference — vertical separation never contributes to
// range.
type Position struct {
	X, Y, Z float64
}

// GroundDistance returns the horizontal (ground-plane) distance to other.
func (p Position) GroundDistance(other Position) float64 {
	return math.Hypot(other.X-p.X, other.Z-p.Z)
}

// HeightAbove returns how far above other this position is
// (positive = higher).
func (p Position) HeightAbove(other Position) float64 {
	return p.Y - other.Y
}

// --- Unit combat state ---

// UnitCombatState is the mutable per-unit numeric state: health and armor.
// Created at spawn from an archetype's base stats, destroyed with the unit.
type UnitCombatState struct {
	maxHealth     int
	currentHealth int
	armor         int // 0-100, percentage of incoming damage absorbed
}

// NewUnitCombatState builds combat state at full health. Max health is
// floored at 1 and armor clamped to [0, 100] so a unit can always be
// damaged and the damage rule's divisor stays sane.
func NewUnitCombatState(maxHealth, armor int) *UnitCombatState {
	if maxHealth < 1 {
		maxHealth = 1
	}
	if armor < 0 {
		armor = 0
	}
	if armor > 100 {
		armor = 100
	}
	return &UnitCombatState{
		maxHealth:     maxHealth,
		currentHealth: maxHealth,
		armor:         armor,
	}
}

// MaxHealth returns the unit's health ceiling.
func (s *UnitCombatState) MaxHealth() int { return s.maxHealth }

// CurrentHealth returns the unit's current health in [0, MaxHealth].
func (s *UnitCombatState) CurrentHealth() int { return s.currentHealth }

// Armor returns the armor percentage in [0, 100].
func (s *UnitCombatState) Armor() int { return s.armor }

// IsAlive reports whether the unit still has health.
func (s *UnitCombatState) IsAlive() bool { return s.currentHealth > 0 }

// HealthPercent returns current/max health as a [0, 1] fraction.
func (s *UnitCombatState) HealthPercent() float64 {
	return float64(s.currentHealth) / float64(s.maxHealth)
}

// ApplyDamage applies armor-reduced damage and returns the health actually
// removed. Any positive incoming damage removes at least 1 health — armor
// scaling alone can never zero a hit. Dead units and non-positive damage
// are no-ops returning 0.
func (s *UnitCombatState) ApplyDamage(rawDamage float64) int {
	if rawDamage <= 0 || !s.IsAlive() {
		return 0
	}
	reduced := rawDamage * (1.0 - float64(s.armor)/100.0)
	actual := int(math.Round(reduced))
	if actual < 1 {
		actual = 1
	}
	if actual > s.currentHealth {
		actual = s.currentHealth
	}
	s.currentHealth -= actual
	return actual
}

// Heal restores up to amount health, clamped at max, and returns the
// health actually restored. Dead units cannot be healed back to life here —
// resurrection, if the game has one, is an external concern.
func (s *UnitCombatState) Heal(amount int) int {
	if amount <= 0 || !s.IsAlive() {
		return 0
	}
	healed := amount
	if s.currentHealth+healed > s.maxHealth {
		healed = s.maxHealth - s.currentHealth
	}
	s.currentHealth += healed
	return healed
}

// --- Unit ---

// Team identifies which side a unit fights for.
type Team int

const (
	TeamRed Team = iota
	TeamBlue
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// Unit is the combat-facing view of a battlefield unit: identity, team,
// position, mutable combat state, and an optional squad membership. The
// surrounding world layer (movement, selection, AI) owns everything else
// and keeps Position current.
type Unit struct {
	ID       int
	Name     string
	Team     Team
	Position Position

	State *UnitCombatState
	squad *Squad // nil when not in a squad
}

// NewUnit creates a unit at full health.
func NewUnit(id int, name string, team Team, pos Position, maxHealth, armor int) *Unit {
	return &Unit{
		ID:       id,
		Name:     name,
		Team:     team,
		Position: pos,
		State:    NewUnitCombatState(maxHealth, armor),
	}
}

// Squad returns the unit's squad, or nil.
func (u *Unit) Squad() *Squad { return u.squad }

// IsAlive reports whether the unit can participate in combat.
func (u *Unit) IsAlive() bool {
	return u.State != nil && u.State.IsAlive()
}

// hitChanceMultiplier returns the squad hit-chance multiplier, 1.0 when
// the unit is not in a squad.
func (u *Unit) hitChanceMultiplier() float64 {
	if u.squad == nil {
		return 1.0
	}
	return u.squad.HitChanceMultiplier()
}

// damageMultiplier returns the squad damage multiplier, 1.0 when the unit
// is not in a squad.
func (u *Unit) damageMultiplier() float64 {
	if u.squad == nil {
		return 1.0
	}
	return u.squad.DamageMultiplier()
}

// elevationBonusFlat returns the squad's additive elevation bonus, 0 when
// the unit is not in a squad.
func (u *Unit) elevationBonusFlat() float64 {
	if u.squad == nil {
		return 0
	}
	return u.squad.ElevationBonusFlat()
}
