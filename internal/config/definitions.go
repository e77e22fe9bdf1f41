package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pellog/skirmish/internal/combat"
)

// Definition files are the designer-facing surface: hand-edited JSON that
// must never reach the resolver in a broken state. Loading validates every
// entry and rejects the whole file with the full problem list so a designer
// fixes everything in one pass instead of replaying errors one at a time.

type curveKey struct {
	In  float64 `json:"in"`
	Out float64 `json:"out"`
}

type weaponSpec struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	ShotsPerBurst     int        `json:"shotsPerBurst"`
	FireRate          float64    `json:"fireRate"`
	BaseHitChance     float64    `json:"baseHitChance"`
	BaseDamage        float64    `json:"baseDamage"`
	EffectiveRange    float64    `json:"effectiveRange"`
	MaxRange          float64    `json:"maxRange"`
	RangeHitCurve     []curveKey `json:"rangeHitCurve"`
	ElevationHitCurve []curveKey `json:"elevationHitCurve"`
}

type upgradeSpec struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	HitChanceMultiplier   float64  `json:"hitChanceMultiplier"`
	DamageMultiplier      float64  `json:"damageMultiplier"`
	ElevationBonus        float64  `json:"elevationBonus"`
	MaxStacks             int      `json:"maxStacks"`
	MutuallyExclusiveWith []string `json:"mutuallyExclusiveWith"`
}

func buildCurve(keys []curveKey) combat.Curve {
	kf := make([]combat.Keyframe, 0, len(keys))
	for _, k := range keys {
		kf = append(kf, combat.Keyframe{In: k.In, Out: k.Out})
	}
	return combat.NewCurve(kf...)
}

// LoadWeapons reads weapon definitions from a JSON file. Every definition
// must pass validation; on failure the error lists each weapon's problems.
func LoadWeapons(path string) ([]*combat.WeaponDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading weapon definitions: %v", err)
	}
	var specs []weaponSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("error parsing weapon definitions %s: %v", path, err)
	}

	weapons := make([]*combat.WeaponDefinition, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	var problems []string
	for i, s := range specs {
		w := &combat.WeaponDefinition{
			ID:                s.ID,
			Name:              s.Name,
			ShotsPerBurst:     s.ShotsPerBurst,
			FireRate:          s.FireRate,
			BaseHitChance:     s.BaseHitChance,
			BaseDamage:        s.BaseDamage,
			EffectiveRange:    s.EffectiveRange,
			MaxRange:          s.MaxRange,
			RangeHitCurve:     buildCurve(s.RangeHitCurve),
			ElevationHitCurve: buildCurve(s.ElevationHitCurve),
		}
		if w.ID == "" {
			problems = append(problems, fmt.Sprintf("weapon #%d: missing id", i))
			continue
		}
		if seen[w.ID] {
			problems = append(problems, fmt.Sprintf("weapon %q: duplicate id", w.ID))
			continue
		}
		seen[w.ID] = true
		if ok, errs := w.Validate(); !ok {
			for _, e := range errs {
				problems = append(problems, fmt.Sprintf("weapon %q: %s", w.ID, e))
			}
			continue
		}
		weapons = append(weapons, w)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid weapon definitions in %s:\n  %s",
			path, strings.Join(problems, "\n  "))
	}
	return weapons, nil
}

// LoadUpgrades reads squad upgrade definitions from a JSON file, applying
// the same all-or-nothing validation gate as LoadWeapons.
func LoadUpgrades(path string) ([]*combat.UpgradeEffect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading upgrade definitions: %v", err)
	}
	var specs []upgradeSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("error parsing upgrade definitions %s: %v", path, err)
	}

	upgrades := make([]*combat.UpgradeEffect, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	var problems []string
	for i, s := range specs {
		u := &combat.UpgradeEffect{
			ID:                    s.ID,
			Name:                  s.Name,
			HitChanceMultiplier:   s.HitChanceMultiplier,
			DamageMultiplier:      s.DamageMultiplier,
			ElevationBonus:        s.ElevationBonus,
			MaxStacks:             s.MaxStacks,
			MutuallyExclusiveWith: s.MutuallyExclusiveWith,
		}
		if u.ID == "" {
			problems = append(problems, fmt.Sprintf("upgrade #%d: missing id", i))
			continue
		}
		if seen[u.ID] {
			problems = append(problems, fmt.Sprintf("upgrade %q: duplicate id", u.ID))
			continue
		}
		seen[u.ID] = true
		if ok, errs := u.Validate(); !ok {
			for _, e := range errs {
				problems = append(problems, fmt.Sprintf("upgrade %q: %s", u.ID, e))
			}
			continue
		}
		upgrades = append(upgrades, u)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid upgrade definitions in %s:\n  %s",
			path, strings.Join(problems, "\n  "))
	}

	// Exclusion lists may only name upgrades that exist in the same file.
	for _, u := range upgrades {
		for _, other := range u.MutuallyExclusiveWith {
			if !seen[other] {
				problems = append(problems, fmt.Sprintf(
					"upgrade %q: excludes unknown upgrade %q", u.ID, other))
			}
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid upgrade definitions in %s:\n  %s",
			path, strings.Join(problems, "\n  "))
	}
	return upgrades, nil
}

// LoadDefinitions loads weapons.json and upgrades.json from dir.
func LoadDefinitions(dir string) ([]*combat.WeaponDefinition, []*combat.UpgradeEffect, error) {
	weapons, err := LoadWeapons(filepath.Join(dir, "weapons.json"))
	if err != nil {
		return nil, nil, err
	}
	upgrades, err := LoadUpgrades(filepath.Join(dir, "upgrades.json"))
	if err != nil {
		return nil, nil, err
	}
	return weapons, upgrades, nil
}
