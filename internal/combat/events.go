package combat

// SquadObserver receives squad mutation notifications. The UI/audio layer
// implements this; the core never requires a live subscriber — a squad
// with no observer simply mutates silently.
type SquadObserver interface {
	UpgradeApplied(squad *Squad, upgrade *UpgradeEffect)
	UpgradeRemoved(squad *Squad, upgrade *UpgradeEffect)
	MemberAdded(squad *Squad, unit *Unit)
	MemberRemoved(squad *Squad, unit *Unit)
}

// noopObserver lets squad code call the observer unconditionally.
type noopObserver struct{}

func (noopObserver) UpgradeApplied(*Squad, *UpgradeEffect) {}
func (noopObserver) UpgradeRemoved(*Squad, *UpgradeEffect) {}
func (noopObserver) MemberAdded(*Squad, *Unit)             {}
func (noopObserver) MemberRemoved(*Squad, *Unit)           {}
