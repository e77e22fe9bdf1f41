package combat

import "fmt"

// UpgradeEffect is a single authored squad upgrade. Like weapons, upgrades
// are validated offline and read-only for the lifetime of a match; a squad
// holds references to applied upgrades, never copies it mutates.
type UpgradeEffect struct {
	ID   string
	Name string

	// Multipliers fold multiplicatively into the squad aggregate;
	// ElevationBonus folds additively.
	HitChanceMultiplier float64 // >= 0
	DamageMultiplier    float64 // >= 0
	ElevationBonus      float64 // [-1, 1]

	// MaxStacks caps how many copies of this upgrade one squad may hold.
	MaxStacks int

	// MutuallyExclusiveWith lists upgrade IDs that cannot coexist with
	// this one on the same squad.
	MutuallyExclusiveWith []string
}

// Validate checks the authoring invariants and returns (ok, problems).
func (u *UpgradeEffect) Validate() (bool, []string) {
	var problems []string
	if u.ID == "" {
		problems = append(problems, "upgrade id must not be empty")
	}
	if u.Name == "" {
		problems = append(problems, "upgrade display name must not be empty")
	}
	if u.HitChanceMultiplier < 0 {
		problems = append(problems, fmt.Sprintf("hit chance multiplier must be >= 0, got %g", u.HitChanceMultiplier))
	}
	if u.DamageMultiplier < 0 {
		problems = append(problems, fmt.Sprintf("damage multiplier must be >= 0, got %g", u.DamageMultiplier))
	}
	if u.ElevationBonus < -1 || u.ElevationBonus > 1 {
		problems = append(problems, fmt.Sprintf("elevation bonus must be in [-1,1], got %g", u.ElevationBonus))
	}
	if u.MaxStacks < 1 {
		problems = append(problems, fmt.Sprintf("max stacks must be >= 1, got %d", u.MaxStacks))
	}
	for _, id := range u.MutuallyExclusiveWith {
		if id == u.ID {
			problems = append(problems, "upgrade cannot be mutually exclusive with itself")
		}
	}
	return len(problems) == 0, problems
}

// ExcludedBy reports whether this upgrade lists the given ID as exclusive.
func (u *UpgradeEffect) ExcludedBy(id string) bool {
	for _, ex := range u.MutuallyExclusiveWith {
		if ex == id {
			return true
		}
	}
	return false
}
