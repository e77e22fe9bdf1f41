package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pellog/skirmish/internal/combat"
	"github.com/pellog/skirmish/internal/config"
	"github.com/pellog/skirmish/internal/sim"
	"github.com/pellog/skirmish/internal/store"
)

func main() {
	var defsDir string
	var redWeapon, blueWeapon string
	var redUpgrades, blueUpgrades string
	var duels, maxRounds int
	var seedBase int64
	var health, armor int
	var distance, elevation float64
	var allPairs bool
	var dbPath string

	flag.StringVar(&defsDir, "defs", "./definitions", "directory holding weapons.json and upgrades.json")
	flag.StringVar(&redWeapon, "red-weapon", "", "red weapon id")
	flag.StringVar(&blueWeapon, "blue-weapon", "", "blue weapon id")
	flag.StringVar(&redUpgrades, "red-upgrades", "", "comma-separated upgrade ids for red")
	flag.StringVar(&blueUpgrades, "blue-upgrades", "", "comma-separated upgrade ids for blue")
	flag.IntVar(&duels, "duels", 500, "duels per matchup")
	flag.IntVar(&maxRounds, "max-rounds", 200, "round cap per duel")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed")
	flag.IntVar(&health, "health", 100, "max health per combatant")
	flag.IntVar(&armor, "armor", 0, "armor per combatant")
	flag.Float64Var(&distance, "distance", 10, "ground distance between combatants")
	flag.Float64Var(&elevation, "elevation", 0, "red's height above blue")
	flag.BoolVar(&allPairs, "all-pairs", false, "run every ordered weapon pair instead of one matchup")
	flag.StringVar(&dbPath, "db", "", "sqlite path to persist runs (empty disables)")
	flag.Parse()

	if duels <= 0 {
		fmt.Println("error: -duels must be > 0")
		return
	}

	weapons, upgrades, err := config.LoadDefinitions(defsDir)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	weaponsByID := make(map[string]*combat.WeaponDefinition, len(weapons))
	for _, w := range weapons {
		weaponsByID[w.ID] = w
	}
	upgradesByID := make(map[string]*combat.UpgradeEffect, len(upgrades))
	for _, u := range upgrades {
		upgradesByID[u.ID] = u
	}

	var st *store.Store
	if dbPath != "" {
		st, err = store.Open(dbPath, zerolog.Nop())
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		defer st.Close()
	}

	redUps, err := pickUpgrades(upgradesByID, redUpgrades)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	blueUps, err := pickUpgrades(upgradesByID, blueUpgrades)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Balance Report ===\n")
	fmt.Printf("duels=%d max_rounds=%d seed_base=%d health=%d armor=%d distance=%.1f elevation=%.1f\n\n",
		duels, maxRounds, seedBase, health, armor, distance, elevation)

	type matchup struct{ red, blue *combat.WeaponDefinition }
	var matchups []matchup
	if allPairs {
		for _, r := range weapons {
			for _, b := range weapons {
				matchups = append(matchups, matchup{r, b})
			}
		}
	} else {
		r, ok := weaponsByID[redWeapon]
		if !ok {
			fmt.Printf("error: unknown red weapon %q (have: %s)\n", redWeapon, idList(weapons))
			return
		}
		b, ok := weaponsByID[blueWeapon]
		if !ok {
			fmt.Printf("error: unknown blue weapon %q (have: %s)\n", blueWeapon, idList(weapons))
			return
		}
		matchups = append(matchups, matchup{r, b})
	}

	for _, m := range matchups {
		redName, blueName := m.red.ID, m.blue.ID
		if redName == blueName {
			// mirror matchup; names must stay distinct for win attribution
			redName += " (red)"
			blueName += " (blue)"
		}
		runner := sim.New(
			sim.WithSeed(seedBase),
			sim.WithDuels(duels),
			sim.WithMaxRounds(maxRounds),
			sim.WithRed(sim.Loadout{
				Name:      redName,
				MaxHealth: health,
				Armor:     armor,
				Position:  combat.Position{Y: elevation},
				Weapon:    m.red,
				Upgrades:  redUps,
			}),
			sim.WithBlue(sim.Loadout{
				Name:      blueName,
				MaxHealth: health,
				Armor:     armor,
				Position:  combat.Position{X: distance},
				Weapon:    m.blue,
				Upgrades:  blueUps,
			}),
		)
		rep, err := runner.Run()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		printMatchup(redName, blueName, rep)

		if st != nil {
			run := store.NewRun(seedBase, maxRounds, m.red.ID, m.blue.ID, rep)
			if err := st.SaveRun(&run); err != nil {
				fmt.Printf("error: %v\n", err)
				return
			}
			fmt.Printf("saved as run %d\n", run.ID)
		}
		fmt.Println()
	}
}

func pickUpgrades(byID map[string]*combat.UpgradeEffect, csv string) ([]*combat.UpgradeEffect, error) {
	if csv == "" {
		return nil, nil
	}
	var out []*combat.UpgradeEffect
	for _, id := range strings.Split(csv, ",") {
		id = strings.TrimSpace(id)
		u, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown upgrade %q", id)
		}
		out = append(out, u)
	}
	return out, nil
}

func idList(weapons []*combat.WeaponDefinition) string {
	ids := make([]string, 0, len(weapons))
	for _, w := range weapons {
		ids = append(ids, w.ID)
	}
	return strings.Join(ids, ", ")
}

func printMatchup(red, blue string, rep *sim.Report) {
	fmt.Printf("--- %s vs %s ---\n", red, blue)
	fmt.Printf("wins: %s=%d (%.1f%%) %s=%d (%.1f%%) draws=%d\n",
		red, rep.Red.Wins, pct(rep.Red.Wins, rep.Duels),
		blue, rep.Blue.Wins, pct(rep.Blue.Wins, rep.Duels),
		rep.Draws)
	fmt.Printf("avg_rounds=%.1f\n", rep.AvgRounds)
	fmt.Printf("accuracy: %s=%.3f (%d/%d) %s=%.3f (%d/%d)\n",
		red, rep.Red.Accuracy(), rep.Red.Hits, rep.Red.Shots,
		blue, rep.Blue.Accuracy(), rep.Blue.Hits, rep.Blue.Shots)
	fmt.Printf("total_damage: %s=%.0f %s=%.0f\n",
		red, rep.Red.TotalDamage, blue, rep.Blue.TotalDamage)
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
