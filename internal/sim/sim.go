// Package sim runs deterministic Monte-Carlo engagements on top of the
// combat core. It exists for balance analysis: repeated duels between two
// loadouts under seeded randomness, aggregated into a report. Nothing in
// here renders or schedules — it is the headless counterpart of whatever
// game loop ends up calling the resolver in production.
package sim

import (
	"fmt"

	"github.com/pellog/skirmish/internal/combat"
)

// Loadout describes one side of a duel: base stats, starting position,
// weapon, and squad upgrades.
type Loadout struct {
	Name      string
	MaxHealth int
	Armor     int
	Position  combat.Position
	Weapon    *combat.WeaponDefinition
	Upgrades  []*combat.UpgradeEffect
}

// Runner executes seeded duels between two loadouts.
type Runner struct {
	seed      int64
	duels     int
	maxRounds int
	red       Loadout
	blue      Loadout
}

// Option configures a Runner during construction.
type Option func(*Runner)

// WithSeed sets the base RNG seed; duel i uses seed+i so runs are
// reproducible and duels stay independent.
func WithSeed(seed int64) Option {
	return func(r *Runner) { r.seed = seed }
}

// WithDuels sets how many duels Run executes.
func WithDuels(n int) Option {
	return func(r *Runner) { r.duels = n }
}

// WithMaxRounds caps exchange rounds per duel; a duel that reaches the cap
// with both sides standing counts as a draw.
func WithMaxRounds(n int) Option {
	return func(r *Runner) { r.maxRounds = n }
}

// WithRed sets the red loadout.
func WithRed(l Loadout) Option {
	return func(r *Runner) { r.red = l }
}

// WithBlue sets the blue loadout.
func WithBlue(l Loadout) Option {
	return func(r *Runner) { r.blue = l }
}

// New builds a runner with sane defaults: 100 duels, 200-round cap, seed 1.
func New(opts ...Option) *Runner {
	r := &Runner{
		seed:      1,
		duels:     100,
		maxRounds: 200,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Validate checks that both loadouts can actually fight.
func (r *Runner) Validate() error {
	for _, side := range []struct {
		name string
		l    Loadout
	}{{"red", r.red}, {"blue", r.blue}} {
		if side.l.Weapon == nil {
			return fmt.Errorf("sim: %s loadout has no weapon", side.name)
		}
		if ok, problems := side.l.Weapon.Validate(); !ok {
			return fmt.Errorf("sim: %s weapon invalid: %v", side.name, problems)
		}
		if side.l.MaxHealth < 1 {
			return fmt.Errorf("sim: %s loadout max health must be >= 1", side.name)
		}
	}
	// Winner attribution keys on loadout names, so they must differ.
	if r.red.Name == r.blue.Name {
		return fmt.Errorf("sim: loadouts must have distinct names, both %q", r.red.Name)
	}
	if r.duels < 1 {
		return fmt.Errorf("sim: duels must be >= 1, got %d", r.duels)
	}
	if r.maxRounds < 1 {
		return fmt.Errorf("sim: max rounds must be >= 1, got %d", r.maxRounds)
	}
	return nil
}

// --- Events and samples ---

// BurstEvent describes one resolved burst inside a duel, in firing order.
// The server's live-duel stream forwards these to clients.
type BurstEvent struct {
	Round          int                 `json:"round"`
	Attacker       string              `json:"attacker"`
	Defender       string              `json:"defender"`
	Result         combat.CombatResult `json:"result"`
	DefenderHealth int                 `json:"defender_health"`
}

// DuelSample is the outcome of a single duel.
type DuelSample struct {
	Seed       int64
	Winner     string // loadout name, "" on a draw
	Rounds     int
	RedDamage  float64
	BlueDamage float64
	RedShots   int
	RedHits    int
	BlueShots  int
	BlueHits   int
}

// SideStats aggregates one side's performance across all duels.
type SideStats struct {
	Name        string
	Wins        int
	Shots       int
	Hits        int
	TotalDamage float64
}

// Accuracy returns observed hits over shots, 0 when nothing was fired.
func (s SideStats) Accuracy() float64 {
	if s.Shots == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Shots)
}

// Report aggregates a full run.
type Report struct {
	Duels     int
	Draws     int
	AvgRounds float64
	Red       SideStats
	Blue      SideStats
	Samples   []DuelSample
}

// --- Execution ---

// Run executes the configured number of duels and aggregates the report.
func (r *Runner) Run() (*Report, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rep := &Report{
		Duels: r.duels,
		Red:   SideStats{Name: r.red.Name},
		Blue:  SideStats{Name: r.blue.Name},
	}
	totalRounds := 0
	for i := 0; i < r.duels; i++ {
		sample := r.Duel(r.seed+int64(i), nil)
		rep.Samples = append(rep.Samples, sample)
		totalRounds += sample.Rounds

		rep.Red.Shots += sample.RedShots
		rep.Red.Hits += sample.RedHits
		rep.Red.TotalDamage += sample.RedDamage
		rep.Blue.Shots += sample.BlueShots
		rep.Blue.Hits += sample.BlueHits
		rep.Blue.TotalDamage += sample.BlueDamage

		switch sample.Winner {
		case r.red.Name:
			rep.Red.Wins++
		case r.blue.Name:
			rep.Blue.Wins++
		default:
			rep.Draws++
		}
	}
	rep.AvgRounds = float64(totalRounds) / float64(r.duels)
	return rep, nil
}

// Duel fights one seeded duel. Red fires first each round — alternating
// initiative is a balance lever the report surfaces rather than hides.
// emit, when non-nil, receives every resolved burst in order.
func (r *Runner) Duel(seed int64, emit func(BurstEvent)) DuelSample {
	red, blue := r.spawn()
	rv := combat.NewResolver(seed)
	sample := DuelSample{Seed: seed}

	for round := 1; round <= r.maxRounds; round++ {
		sample.Rounds = round

		res := rv.ResolveCombat(red, blue, r.red.Weapon)
		sample.RedShots += res.ShotsFired
		sample.RedHits += res.ShotsHit
		sample.RedDamage += res.TotalDamage
		if emit != nil {
			emit(BurstEvent{
				Round:          round,
				Attacker:       r.red.Name,
				Defender:       r.blue.Name,
				Result:         res,
				DefenderHealth: blue.State.CurrentHealth(),
			})
		}
		if res.TargetDestroyed {
			sample.Winner = r.red.Name
			return sample
		}

		res = rv.ResolveCombat(blue, red, r.blue.Weapon)
		sample.BlueShots += res.ShotsFired
		sample.BlueHits += res.ShotsHit
		sample.BlueDamage += res.TotalDamage
		if emit != nil {
			emit(BurstEvent{
				Round:          round,
				Attacker:       r.blue.Name,
				Defender:       r.red.Name,
				Result:         res,
				DefenderHealth: red.State.CurrentHealth(),
			})
		}
		if res.TargetDestroyed {
			sample.Winner = r.blue.Name
			return sample
		}
	}
	return sample // draw
}

// spawn builds fresh units (and squads, when upgrades are present) for one
// duel so health and squad state never leak between duels.
func (r *Runner) spawn() (*combat.Unit, *combat.Unit) {
	red := combat.NewUnit(1, r.red.Name, combat.TeamRed, r.red.Position, r.red.MaxHealth, r.red.Armor)
	blue := combat.NewUnit(2, r.blue.Name, combat.TeamBlue, r.blue.Position, r.blue.MaxHealth, r.blue.Armor)

	if len(r.red.Upgrades) > 0 {
		sq := combat.NewSquad(1, combat.TeamRed)
		sq.AddMember(red)
		for _, u := range r.red.Upgrades {
			sq.ApplyUpgrade(u)
		}
	}
	if len(r.blue.Upgrades) > 0 {
		sq := combat.NewSquad(2, combat.TeamBlue)
		sq.AddMember(blue)
		for _, u := range r.blue.Upgrades {
			sq.ApplyUpgrade(u)
		}
	}
	return red, blue
}
