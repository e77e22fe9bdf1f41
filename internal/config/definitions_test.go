package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validWeaponsJSON = `[
	{
		"id": "rifle",
		"name": "Pulse Rifle",
		"shotsPerBurst": 3,
		"fireRate": 1.2,
		"baseHitChance": 0.75,
		"baseDamage": 12,
		"effectiveRange": 20,
		"maxRange": 30,
		"rangeHitCurve": [
			{ "in": 0, "out": 1.0 },
			{ "in": 1, "out": 0.6 },
			{ "in": 1.5, "out": 0.2 }
		],
		"elevationHitCurve": [
			{ "in": -1, "out": 0.85 },
			{ "in": 0, "out": 1.0 },
			{ "in": 1, "out": 1.15 }
		]
	},
	{
		"id": "cannon",
		"name": "Rail Cannon",
		"shotsPerBurst": 1,
		"fireRate": 0.4,
		"baseHitChance": 0.55,
		"baseDamage": 40,
		"effectiveRange": 35,
		"maxRange": 50,
		"rangeHitCurve": [{ "in": 0, "out": 1.0 }],
		"elevationHitCurve": [{ "in": 0, "out": 1.0 }]
	}
]`

const validUpgradesJSON = `[
	{
		"id": "scope",
		"name": "Targeting Scope",
		"hitChanceMultiplier": 1.15,
		"damageMultiplier": 1.0,
		"elevationBonus": 0,
		"maxStacks": 2
	},
	{
		"id": "hollow-point",
		"name": "Hollow Point Rounds",
		"hitChanceMultiplier": 1.0,
		"damageMultiplier": 1.25,
		"elevationBonus": 0,
		"maxStacks": 1,
		"mutuallyExclusiveWith": ["ap-rounds"]
	},
	{
		"id": "ap-rounds",
		"name": "Armor Piercing Rounds",
		"hitChanceMultiplier": 0.95,
		"damageMultiplier": 1.4,
		"elevationBonus": 0,
		"maxStacks": 1
	}
]`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestLoadWeapons_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "weapons.json", validWeaponsJSON)

	weapons, err := LoadWeapons(path)
	require.NoError(t, err)
	require.Len(t, weapons, 2)

	rifle := weapons[0]
	assert.Equal(t, "rifle", rifle.ID)
	assert.Equal(t, "Pulse Rifle", rifle.Name)
	assert.Equal(t, 3, rifle.ShotsPerBurst)
	assert.Equal(t, 3, rifle.RangeHitCurve.Len())
	assert.InDelta(t, 0.8, rifle.RangeHitCurve.Evaluate(0.5), 1e-9)

	cannon := weapons[1]
	assert.Equal(t, "cannon", cannon.ID)
	assert.Equal(t, 40.0, cannon.BaseDamage)
}

func TestLoadWeapons_CollectsAllProblems(t *testing.T) {
	bad := `[
		{ "id": "broken", "name": "", "shotsPerBurst": 0, "fireRate": 0,
		  "baseHitChance": 2, "baseDamage": 0, "effectiveRange": 0, "maxRange": -1,
		  "rangeHitCurve": [], "elevationHitCurve": [] }
	]`
	path := writeFile(t, t.TempDir(), "weapons.json", bad)

	_, err := LoadWeapons(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display name")
	assert.Contains(t, err.Error(), "shots per burst")
	assert.Contains(t, err.Error(), "base hit chance")
	assert.Contains(t, err.Error(), "range hit curve")
	assert.Contains(t, err.Error(), "elevation hit curve")
}

func TestLoadWeapons_RejectsDuplicateIDs(t *testing.T) {
	dup := `[
		{ "id": "rifle", "name": "A", "shotsPerBurst": 1, "fireRate": 1,
		  "baseHitChance": 0.5, "baseDamage": 1, "effectiveRange": 1, "maxRange": 1,
		  "rangeHitCurve": [{ "in": 0, "out": 1 }], "elevationHitCurve": [{ "in": 0, "out": 1 }] },
		{ "id": "rifle", "name": "B", "shotsPerBurst": 1, "fireRate": 1,
		  "baseHitChance": 0.5, "baseDamage": 1, "effectiveRange": 1, "maxRange": 1,
		  "rangeHitCurve": [{ "in": 0, "out": 1 }], "elevationHitCurve": [{ "in": 0, "out": 1 }] }
	]`
	path := writeFile(t, t.TempDir(), "weapons.json", dup)

	_, err := LoadWeapons(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestLoadWeapons_MissingFile(t *testing.T) {
	_, err := LoadWeapons("/nonexistent/weapons.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading weapon definitions")
}

func TestLoadWeapons_MalformedJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "weapons.json", `{not json`)
	_, err := LoadWeapons(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing weapon definitions")
}

func TestLoadUpgrades_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "upgrades.json", validUpgradesJSON)

	upgrades, err := LoadUpgrades(path)
	require.NoError(t, err)
	require.Len(t, upgrades, 3)
	assert.Equal(t, "scope", upgrades[0].ID)
	assert.Equal(t, 2, upgrades[0].MaxStacks)
	assert.Equal(t, []string{"ap-rounds"}, upgrades[1].MutuallyExclusiveWith)
}

func TestLoadUpgrades_RejectsUnknownExclusion(t *testing.T) {
	bad := `[
		{ "id": "scope", "name": "Scope", "hitChanceMultiplier": 1.1,
		  "damageMultiplier": 1, "elevationBonus": 0, "maxStacks": 1,
		  "mutuallyExclusiveWith": ["does-not-exist"] }
	]`
	path := writeFile(t, t.TempDir(), "upgrades.json", bad)

	_, err := LoadUpgrades(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `excludes unknown upgrade "does-not-exist"`)
}

func TestLoadUpgrades_CollectsAllProblems(t *testing.T) {
	bad := `[
		{ "id": "broken", "name": "", "hitChanceMultiplier": -1,
		  "damageMultiplier": -2, "elevationBonus": 5, "maxStacks": 0 }
	]`
	path := writeFile(t, t.TempDir(), "upgrades.json", bad)

	_, err := LoadUpgrades(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display name")
	assert.Contains(t, err.Error(), "hit chance multiplier")
	assert.Contains(t, err.Error(), "damage multiplier")
	assert.Contains(t, err.Error(), "elevation bonus")
	assert.Contains(t, err.Error(), "max stacks")
}

func TestLoadDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weapons.json", validWeaponsJSON)
	writeFile(t, dir, "upgrades.json", validUpgradesJSON)

	weapons, upgrades, err := LoadDefinitions(dir)
	require.NoError(t, err)
	assert.Len(t, weapons, 2)
	assert.Len(t, upgrades, 3)
}

func TestLoadDefinitions_MissingUpgrades(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weapons.json", validWeaponsJSON)

	_, _, err := LoadDefinitions(dir)
	require.Error(t, err)
}
