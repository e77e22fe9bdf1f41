package combat

// --- Squad ---

const (
	// maxSquadMembers bounds the roster; joins beyond this fail.
	maxSquadMembers = 20
	// maxSquadUpgrades bounds the applied-upgrade list, counting stacks.
	maxSquadUpgrades = 10
)

// Squad groups units that share stacked upgrade modifiers. The three
// aggregate modifiers are cached and lazily recomputed: any upgrade
// mutation invalidates the cache before the next read, so reads always
// reflect the currently-applied list.
//
// Squads are single-writer, read-mostly within one simulation thread —
// no internal locking. Concurrent upgrade mutation and combat resolution
// against the same squad must be serialized by the caller.
type Squad struct {
	ID   int
	Team Team

	members  []*Unit
	upgrades []*UpgradeEffect // applied instances, in application order
	stacks   map[string]int   // upgrade ID -> applied copies

	// Cached aggregates, valid only while cacheDirty is false.
	cacheDirty         bool
	hitChanceMul       float64
	damageMul          float64
	elevationBonusFlat float64

	observer SquadObserver
}

// NewSquad creates an empty squad with clean (identity) modifiers.
func NewSquad(id int, team Team) *Squad {
	return &Squad{
		ID:           id,
		Team:         team,
		stacks:       make(map[string]int),
		hitChanceMul: 1.0,
		damageMul:    1.0,
		observer:     noopObserver{},
	}
}

// SetObserver installs a mutation observer. Passing nil restores the
// silent default.
func (sq *Squad) SetObserver(obs SquadObserver) {
	if obs == nil {
		sq.observer = noopObserver{}
		return
	}
	sq.observer = obs
}

// --- Roster ---

// AddMember joins a unit to the squad. Returns false without mutating
// anything when the roster is full, the unit is nil, or it already belongs
// to a squad (including this one).
func (sq *Squad) AddMember(u *Unit) bool {
	if u == nil || u.squad != nil {
		return false
	}
	if len(sq.members) >= maxSquadMembers {
		return false
	}
	sq.members = append(sq.members, u)
	u.squad = sq
	sq.observer.MemberAdded(sq, u)
	return true
}

// RemoveMember detaches a unit from the squad. Returns false if the unit
// is not a member.
func (sq *Squad) RemoveMember(u *Unit) bool {
	for i, m := range sq.members {
		if m == u {
			sq.members = append(sq.members[:i], sq.members[i+1:]...)
			u.squad = nil
			sq.observer.MemberRemoved(sq, u)
			return true
		}
	}
	return false
}

// Members returns the current roster. The slice is a copy; callers cannot
// mutate squad membership through it.
func (sq *Squad) Members() []*Unit {
	out := make([]*Unit, len(sq.members))
	copy(out, sq.members)
	return out
}

// MemberCount returns the roster size.
func (sq *Squad) MemberCount() int { return len(sq.members) }

// --- Upgrades ---

// ApplyUpgrade applies one copy of an upgrade. It fails — returning false
// with no state change — when the upgrade list is at capacity, the
// upgrade's own stack cap is reached, or any applied upgrade conflicts
// with it (mutual exclusion is checked in both directions).
func (sq *Squad) ApplyUpgrade(u *UpgradeEffect) bool {
	if u == nil {
		return false
	}
	if len(sq.upgrades) >= maxSquadUpgrades {
		return false
	}
	if sq.stacks[u.ID] >= u.MaxStacks {
		return false
	}
	for _, applied := range sq.upgrades {
		if applied.ID == u.ID {
			continue // stacking the same upgrade is not a conflict
		}
		if u.ExcludedBy(applied.ID) || applied.ExcludedBy(u.ID) {
			return false
		}
	}

	sq.upgrades = append(sq.upgrades, u)
	sq.stacks[u.ID]++
	sq.cacheDirty = true
	sq.observer.UpgradeApplied(sq, u)
	return true
}

// RemoveUpgrade removes one applied instance of the upgrade. Returns false
// if no instance is applied.
func (sq *Squad) RemoveUpgrade(u *UpgradeEffect) bool {
	if u == nil {
		return false
	}
	for i, applied := range sq.upgrades {
		if applied.ID != u.ID {
			continue
		}
		sq.upgrades = append(sq.upgrades[:i], sq.upgrades[i+1:]...)
		sq.stacks[u.ID]--
		if sq.stacks[u.ID] <= 0 {
			delete(sq.stacks, u.ID)
		}
		sq.cacheDirty = true
		sq.observer.UpgradeRemoved(sq, applied)
		return true
	}
	return false
}

// AppliedUpgrades returns the applied upgrade instances in application
// order (a stacked upgrade appears once per copy).
func (sq *Squad) AppliedUpgrades() []*UpgradeEffect {
	out := make([]*UpgradeEffect, len(sq.upgrades))
	copy(out, sq.upgrades)
	return out
}

// StackCount returns how many copies of the upgrade ID are applied.
func (sq *Squad) StackCount(id string) int { return sq.stacks[id] }

// --- Cached aggregates ---

// HitChanceMultiplier returns the product of all applied hit-chance
// multipliers (1.0 for an unupgraded squad).
func (sq *Squad) HitChanceMultiplier() float64 {
	sq.recomputeIfDirty()
	return sq.hitChanceMul
}

// DamageMultiplier returns the product of all applied damage multipliers.
func (sq *Squad) DamageMultiplier() float64 {
	sq.recomputeIfDirty()
	return sq.damageMul
}

// ElevationBonusFlat returns the sum of all applied elevation bonuses.
func (sq *Squad) ElevationBonusFlat() float64 {
	sq.recomputeIfDirty()
	return sq.elevationBonusFlat
}

// recomputeIfDirty folds the applied upgrade list into the three cached
// aggregates. Multiplication and addition are commutative, so application
// order never changes the result.
func (sq *Squad) recomputeIfDirty() {
	if !sq.cacheDirty {
		return
	}
	hit, dmg, elev := 1.0, 1.0, 0.0
	for _, u := range sq.upgrades {
		hit *= u.HitChanceMultiplier
		dmg *= u.DamageMultiplier
		elev += u.ElevationBonus
	}
	sq.hitChanceMul = hit
	sq.damageMul = dmg
	sq.elevationBonusFlat = elev
	sq.cacheDirty = false
}
