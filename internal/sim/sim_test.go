package sim

import (
	"testing"

	"github.com/pellog/skirmish/internal/combat"
)

func duelWeapon(baseHit float64, shots int, damage float64) *combat.WeaponDefinition {
	return &combat.WeaponDefinition{
		ID:                "test-weapon",
		Name:              "Test Weapon",
		ShotsPerBurst:     shots,
		FireRate:          1.0,
		BaseHitChance:     baseHit,
		BaseDamage:        damage,
		EffectiveRange:    20,
		MaxRange:          30,
		RangeHitCurve:     combat.FlatCurve(1.0),
		ElevationHitCurve: combat.FlatCurve(1.0),
	}
}

func loadout(name string, health int, weapon *combat.WeaponDefinition) Loadout {
	return Loadout{
		Name:      name,
		MaxHealth: health,
		Armor:     0,
		Position:  combat.Position{},
		Weapon:    weapon,
	}
}

func TestRun_Deterministic(t *testing.T) {
	build := func() *Runner {
		return New(
			WithSeed(42),
			WithDuels(50),
			WithRed(loadout("red", 60, duelWeapon(0.6, 3, 10))),
			WithBlue(loadout("blue", 60, duelWeapon(0.6, 3, 10))),
		)
	}
	a, err := build().Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	b, err := build().Run()
	if err != nil {
		t.Fatalf("rerun failed: %v", err)
	}
	if a.Red.Wins != b.Red.Wins || a.Blue.Wins != b.Blue.Wins || a.Draws != b.Draws {
		t.Fatalf("same seed diverged: %d/%d/%d vs %d/%d/%d",
			a.Red.Wins, a.Blue.Wins, a.Draws, b.Red.Wins, b.Blue.Wins, b.Draws)
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("duel %d diverged: %+v vs %+v", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestRun_OutcomesAccountForEveryDuel(t *testing.T) {
	rep, err := New(
		WithSeed(7),
		WithDuels(80),
		WithRed(loadout("red", 50, duelWeapon(0.7, 3, 12))),
		WithBlue(loadout("blue", 50, duelWeapon(0.7, 3, 12))),
	).Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := rep.Red.Wins + rep.Blue.Wins + rep.Draws; got != rep.Duels {
		t.Fatalf("expected outcomes to sum to %d duels, got %d", rep.Duels, got)
	}
	if len(rep.Samples) != rep.Duels {
		t.Fatalf("expected %d samples, got %d", rep.Duels, len(rep.Samples))
	}
	if rep.AvgRounds < 1 {
		t.Fatalf("expected at least one round per duel on average, got %.4f", rep.AvgRounds)
	}
}

func TestRun_StrongerWeaponWinsMore(t *testing.T) {
	rep, err := New(
		WithSeed(11),
		WithDuels(200),
		WithRed(loadout("red", 60, duelWeapon(0.8, 4, 14))),
		WithBlue(loadout("blue", 60, duelWeapon(0.4, 3, 8))),
	).Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if rep.Red.Wins <= rep.Blue.Wins {
		t.Fatalf("expected red (stronger weapon) to win more: red %d, blue %d",
			rep.Red.Wins, rep.Blue.Wins)
	}
}

func TestRun_UpgradesShiftWinRate(t *testing.T) {
	scope := &combat.UpgradeEffect{
		ID: "scope", Name: "Scope",
		HitChanceMultiplier: 1.3, DamageMultiplier: 1.2,
		MaxStacks: 1,
	}
	red := loadout("red", 60, duelWeapon(0.5, 3, 10))
	red.Upgrades = []*combat.UpgradeEffect{scope}

	rep, err := New(
		WithSeed(23),
		WithDuels(300),
		WithRed(red),
		WithBlue(loadout("blue", 60, duelWeapon(0.5, 3, 10))),
	).Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if rep.Red.Wins <= rep.Blue.Wins {
		t.Fatalf("expected upgraded side to win more: red %d, blue %d",
			rep.Red.Wins, rep.Blue.Wins)
	}
	if rep.Red.Accuracy() <= rep.Blue.Accuracy() {
		t.Fatalf("expected upgraded side to shoot straighter: red %.4f, blue %.4f",
			rep.Red.Accuracy(), rep.Blue.Accuracy())
	}
}

func TestRun_ObservedAccuracyTracksHitChance(t *testing.T) {
	// Identical flat-curve loadouts at zero range: every shot resolves at
	// exactly the base hit chance, so observed accuracy should sit near it.
	const baseHit = 0.6
	rep, err := New(
		WithSeed(5),
		WithDuels(400),
		WithRed(loadout("red", 80, duelWeapon(baseHit, 3, 10))),
		WithBlue(loadout("blue", 80, duelWeapon(baseHit, 3, 10))),
	).Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, side := range []SideStats{rep.Red, rep.Blue} {
		acc := side.Accuracy()
		if acc < baseHit-0.05 || acc > baseHit+0.05 {
			t.Fatalf("%s accuracy %.4f drifted from hit chance %.2f", side.Name, acc, baseHit)
		}
	}
}

func TestDuel_EmitsEveryBurstInOrder(t *testing.T) {
	r := New(
		WithSeed(3),
		WithRed(loadout("red", 40, duelWeapon(0.7, 3, 10))),
		WithBlue(loadout("blue", 40, duelWeapon(0.7, 3, 10))),
	)
	var events []BurstEvent
	sample := r.Duel(3, func(ev BurstEvent) { events = append(events, ev) })

	if len(events) == 0 {
		t.Fatal("expected at least one burst event")
	}
	lastRound := 0
	for i, ev := range events {
		if ev.Round < lastRound {
			t.Fatalf("event %d went backwards in rounds: %d after %d", i, ev.Round, lastRound)
		}
		lastRound = ev.Round
		if ev.Attacker == ev.Defender {
			t.Fatalf("event %d has unit firing at itself: %+v", i, ev)
		}
	}
	last := events[len(events)-1]
	if sample.Winner != "" {
		if last.DefenderHealth != 0 {
			t.Fatalf("duel had winner %q but final event left defender at %d health",
				sample.Winner, last.DefenderHealth)
		}
		if last.Attacker != sample.Winner {
			t.Fatalf("final burst attacker %q should be winner %q", last.Attacker, sample.Winner)
		}
	}
	if last.Round != sample.Rounds {
		t.Fatalf("final event round %d should match sample rounds %d", last.Round, sample.Rounds)
	}
}

func TestDuel_MaxRoundsDraw(t *testing.T) {
	// Minimum hit chance against heavy armor: neither side can finish in
	// three rounds, so the duel must end as a draw with no winner.
	tank := Loadout{
		Name:      "tank",
		MaxHealth: 10000,
		Armor:     99,
		Weapon:    duelWeapon(0.01, 1, 1),
	}
	other := tank
	other.Name = "other"

	r := New(WithSeed(1), WithDuels(1), WithMaxRounds(3), WithRed(tank), WithBlue(other))
	sample := r.Duel(1, nil)
	if sample.Winner != "" {
		t.Fatalf("expected a draw, got winner %q", sample.Winner)
	}
	if sample.Rounds != 3 {
		t.Fatalf("expected duel to run the full 3 rounds, got %d", sample.Rounds)
	}
}

func TestValidate_RejectsBrokenSetups(t *testing.T) {
	goodRed := loadout("red", 50, duelWeapon(0.5, 3, 10))
	goodBlue := loadout("blue", 50, duelWeapon(0.5, 3, 10))

	cases := []struct {
		name string
		r    *Runner
	}{
		{"missing weapon", New(WithRed(Loadout{Name: "red", MaxHealth: 50}), WithBlue(goodBlue))},
		{"zero health", New(WithRed(loadout("red", 0, duelWeapon(0.5, 3, 10))), WithBlue(goodBlue))},
		{"zero duels", New(WithDuels(0), WithRed(goodRed), WithBlue(goodBlue))},
		{"zero rounds", New(WithMaxRounds(0), WithRed(goodRed), WithBlue(goodBlue))},
		{"invalid weapon", New(WithRed(loadout("red", 50, duelWeapon(-1, 0, 0))), WithBlue(goodBlue))},
		{"same name both sides", New(WithRed(goodRed), WithBlue(loadout("red", 50, duelWeapon(0.5, 3, 10))))},
	}
	for _, tc := range cases {
		if err := tc.r.Validate(); err == nil {
			t.Fatalf("%s: expected validation error, got nil", tc.name)
		}
	}
}
