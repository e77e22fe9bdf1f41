// Package server exposes the combat engine over HTTP: definition catalogs,
// one-shot burst resolution, Monte-Carlo duels, persisted run history, and
// a websocket stream of live duel bursts.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pellog/skirmish/internal/combat"
	"github.com/pellog/skirmish/internal/config"
	"github.com/pellog/skirmish/internal/sim"
	"github.com/pellog/skirmish/internal/store"
)

// Server wires definitions, the simulator, and optional persistence behind
// a gorilla/mux router.
type Server struct {
	log      zerolog.Logger
	weapons  []*combat.WeaponDefinition
	byID     map[string]*combat.WeaponDefinition
	upgrades []*combat.UpgradeEffect
	upByID   map[string]*combat.UpgradeEffect
	store    *store.Store // nil disables run persistence
	simCfg   config.SimConfig
	router   *mux.Router
	upgrader websocket.Upgrader
}

// New builds a server over validated definitions. store may be nil, in
// which case duel runs are not persisted and /api/runs reports 404.
func New(log zerolog.Logger, weapons []*combat.WeaponDefinition, upgrades []*combat.UpgradeEffect, st *store.Store, simCfg config.SimConfig) *Server {
	s := &Server{
		log:      log,
		weapons:  weapons,
		byID:     make(map[string]*combat.WeaponDefinition, len(weapons)),
		upgrades: upgrades,
		upByID:   make(map[string]*combat.UpgradeEffect, len(upgrades)),
		store:    st,
		simCfg:   simCfg,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	for _, w := range weapons {
		s.byID[w.ID] = w
	}
	for _, u := range upgrades {
		s.upByID[u.ID] = u
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/api/weapons", s.handleWeapons).Methods(http.MethodGet)
	r.HandleFunc("/api/weapons/{id}", s.handleWeapon).Methods(http.MethodGet)
	r.HandleFunc("/api/upgrades", s.handleUpgrades).Methods(http.MethodGet)
	r.HandleFunc("/api/sim/resolve", s.handleResolve).Methods(http.MethodPost)
	r.HandleFunc("/api/sim/duel", s.handleDuel).Methods(http.MethodPost)
	r.HandleFunc("/api/runs", s.handleRuns).Methods(http.MethodGet)
	r.HandleFunc("/api/runs/{id}", s.handleRun).Methods(http.MethodGet)
	r.HandleFunc("/api/ws/duel", s.handleWSDuel)
	s.router = r
	return s
}

// Router returns the HTTP handler for mounting or testing.
func (s *Server) Router() http.Handler { return s.router }

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Catalog handlers ---

type curveDTO []keyDTO

type keyDTO struct {
	In  float64 `json:"in"`
	Out float64 `json:"out"`
}

func curveToDTO(c combat.Curve) curveDTO {
	keys := c.Keys()
	out := make(curveDTO, 0, len(keys))
	for _, k := range keys {
		out = append(out, keyDTO{In: k.In, Out: k.Out})
	}
	return out
}

type weaponDTO struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	ShotsPerBurst     int      `json:"shots_per_burst"`
	FireRate          float64  `json:"fire_rate"`
	BaseHitChance     float64  `json:"base_hit_chance"`
	BaseDamage        float64  `json:"base_damage"`
	EffectiveRange    float64  `json:"effective_range"`
	MaxRange          float64  `json:"max_range"`
	RangeHitCurve     curveDTO `json:"range_hit_curve"`
	ElevationHitCurve curveDTO `json:"elevation_hit_curve"`
}

func weaponToDTO(w *combat.WeaponDefinition) weaponDTO {
	return weaponDTO{
		ID:                w.ID,
		Name:              w.Name,
		ShotsPerBurst:     w.ShotsPerBurst,
		FireRate:          w.FireRate,
		BaseHitChance:     w.BaseHitChance,
		BaseDamage:        w.BaseDamage,
		EffectiveRange:    w.EffectiveRange,
		MaxRange:          w.MaxRange,
		RangeHitCurve:     curveToDTO(w.RangeHitCurve),
		ElevationHitCurve: curveToDTO(w.ElevationHitCurve),
	}
}

type upgradeDTO struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	HitChanceMultiplier   float64  `json:"hit_chance_multiplier"`
	DamageMultiplier      float64  `json:"damage_multiplier"`
	ElevationBonus        float64  `json:"elevation_bonus"`
	MaxStacks             int      `json:"max_stacks"`
	MutuallyExclusiveWith []string `json:"mutually_exclusive_with,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"weapons":  len(s.weapons),
		"upgrades": len(s.upgrades),
	})
}

func (s *Server) handleWeapons(w http.ResponseWriter, r *http.Request) {
	out := make([]weaponDTO, 0, len(s.weapons))
	for _, wd := range s.weapons {
		out = append(out, weaponToDTO(wd))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleWeapon(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	wd, ok := s.byID[id]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown weapon: "+id)
		return
	}
	writeJSON(w, http.StatusOK, weaponToDTO(wd))
}

func (s *Server) handleUpgrades(w http.ResponseWriter, r *http.Request) {
	out := make([]upgradeDTO, 0, len(s.upgrades))
	for _, u := range s.upgrades {
		out = append(out, upgradeDTO{
			ID:                    u.ID,
			Name:                  u.Name,
			HitChanceMultiplier:   u.HitChanceMultiplier,
			DamageMultiplier:      u.DamageMultiplier,
			ElevationBonus:        u.ElevationBonus,
			MaxStacks:             u.MaxStacks,
			MutuallyExclusiveWith: u.MutuallyExclusiveWith,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Simulation handlers ---

type positionDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type combatantDTO struct {
	Name      string      `json:"name"`
	Weapon    string      `json:"weapon"`
	MaxHealth int         `json:"max_health"`
	Armor     int         `json:"armor"`
	Position  positionDTO `json:"position"`
	Upgrades  []string    `json:"upgrades,omitempty"`
}

// loadout resolves a combatant request against the catalogs. Upgrades are
// referenced by ID so clients can only fight with authored content.
func (s *Server) loadout(c combatantDTO, fallbackName string) (sim.Loadout, string, bool) {
	name := c.Name
	if name == "" {
		name = fallbackName
	}
	weapon, ok := s.byID[c.Weapon]
	if !ok {
		return sim.Loadout{}, "unknown weapon: " + c.Weapon, false
	}
	l := sim.Loadout{
		Name:      name,
		MaxHealth: c.MaxHealth,
		Armor:     c.Armor,
		Position:  combat.Position{X: c.Position.X, Y: c.Position.Y, Z: c.Position.Z},
		Weapon:    weapon,
	}
	for _, id := range c.Upgrades {
		u, ok := s.upByID[id]
		if !ok {
			return sim.Loadout{}, "unknown upgrade: " + id, false
		}
		l.Upgrades = append(l.Upgrades, u)
	}
	return l, "", true
}

type resolveRequest struct {
	Attacker combatantDTO `json:"attacker"`
	Target   combatantDTO `json:"target"`
	Seed     int64        `json:"seed"`
}

type resolveResponse struct {
	HitChance    float64             `json:"hit_chance"`
	DamagePerHit float64             `json:"damage_per_hit"`
	ExpectedDPS  float64             `json:"expected_dps"`
	Result       combat.CombatResult `json:"result"`
	TargetHealth int                 `json:"target_health"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	atkLoadout, msg, ok := s.loadout(req.Attacker, "attacker")
	if !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	tgtLoadout, msg, ok := s.loadout(req.Target, "target")
	if !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if atkLoadout.MaxHealth < 1 || tgtLoadout.MaxHealth < 1 {
		writeError(w, http.StatusBadRequest, "max_health must be >= 1 for both combatants")
		return
	}

	attacker, target := spawnPair(atkLoadout, tgtLoadout)
	rv := combat.NewResolver(req.Seed)
	res := rv.ResolveCombat(attacker, target, atkLoadout.Weapon)

	writeJSON(w, http.StatusOK, resolveResponse{
		HitChance:    combat.FinalHitChance(attacker, target, atkLoadout.Weapon),
		DamagePerHit: combat.DamagePerHit(attacker, atkLoadout.Weapon),
		ExpectedDPS:  combat.ExpectedDPS(attacker, target, atkLoadout.Weapon),
		Result:       res,
		TargetHealth: target.State.CurrentHealth(),
	})
	s.log.Debug().
		Str("weapon", atkLoadout.Weapon.ID).
		Int("hits", res.ShotsHit).
		Bool("destroyed", res.TargetDestroyed).
		Msg("burst resolved")
}

// spawnPair builds one-off units (and squads when upgrades are present)
// for a single resolution.
func spawnPair(a, b sim.Loadout) (*combat.Unit, *combat.Unit) {
	attacker := combat.NewUnit(1, a.Name, combat.TeamRed, a.Position, a.MaxHealth, a.Armor)
	target := combat.NewUnit(2, b.Name, combat.TeamBlue, b.Position, b.MaxHealth, b.Armor)
	if len(a.Upgrades) > 0 {
		sq := combat.NewSquad(1, combat.TeamRed)
		sq.AddMember(attacker)
		for _, u := range a.Upgrades {
			sq.ApplyUpgrade(u)
		}
	}
	if len(b.Upgrades) > 0 {
		sq := combat.NewSquad(2, combat.TeamBlue)
		sq.AddMember(target)
		for _, u := range b.Upgrades {
			sq.ApplyUpgrade(u)
		}
	}
	return attacker, target
}

type duelRequest struct {
	Red       combatantDTO `json:"red"`
	Blue      combatantDTO `json:"blue"`
	Duels     int          `json:"duels"`
	MaxRounds int          `json:"max_rounds"`
	Seed      int64        `json:"seed"`
	Persist   bool         `json:"persist"`
}

type sideDTO struct {
	Name        string  `json:"name"`
	Wins        int     `json:"wins"`
	Shots       int     `json:"shots"`
	Hits        int     `json:"hits"`
	Accuracy    float64 `json:"accuracy"`
	TotalDamage float64 `json:"total_damage"`
}

type duelResponse struct {
	Duels     int     `json:"duels"`
	Draws     int     `json:"draws"`
	AvgRounds float64 `json:"avg_rounds"`
	Red       sideDTO `json:"red"`
	Blue      sideDTO `json:"blue"`
	RunID     uint    `json:"run_id,omitempty"`
}

func sideToDTO(s sim.SideStats) sideDTO {
	return sideDTO{
		Name:        s.Name,
		Wins:        s.Wins,
		Shots:       s.Shots,
		Hits:        s.Hits,
		Accuracy:    s.Accuracy(),
		TotalDamage: s.TotalDamage,
	}
}

// duelSetup is a resolved duel request with server defaults applied.
type duelSetup struct {
	runner    *sim.Runner
	red       sim.Loadout
	blue      sim.Loadout
	seed      int64
	maxRounds int
}

// setup applies server sim defaults over a duel request.
func (s *Server) setup(req duelRequest) (duelSetup, string, bool) {
	red, msg, ok := s.loadout(req.Red, "red")
	if !ok {
		return duelSetup{}, msg, false
	}
	blue, msg, ok := s.loadout(req.Blue, "blue")
	if !ok {
		return duelSetup{}, msg, false
	}
	duels := req.Duels
	if duels == 0 {
		duels = s.simCfg.Duels
	}
	maxRounds := req.MaxRounds
	if maxRounds == 0 {
		maxRounds = s.simCfg.MaxRounds
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.simCfg.Seed
	}
	r := sim.New(
		sim.WithSeed(seed),
		sim.WithDuels(duels),
		sim.WithMaxRounds(maxRounds),
		sim.WithRed(red),
		sim.WithBlue(blue),
	)
	return duelSetup{runner: r, red: red, blue: blue, seed: seed, maxRounds: maxRounds}, "", true
}

func (s *Server) handleDuel(w http.ResponseWriter, r *http.Request) {
	var req duelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	ds, msg, ok := s.setup(req)
	if !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	rep, err := ds.runner.Run()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := duelResponse{
		Duels:     rep.Duels,
		Draws:     rep.Draws,
		AvgRounds: rep.AvgRounds,
		Red:       sideToDTO(rep.Red),
		Blue:      sideToDTO(rep.Blue),
	}
	if req.Persist && s.store != nil {
		run := store.NewRun(ds.seed, ds.maxRounds, ds.red.Weapon.ID, ds.blue.Weapon.ID, rep)
		if err := s.store.SaveRun(&run); err != nil {
			s.log.Error().Err(err).Msg("failed to persist run")
		} else {
			resp.RunID = run.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
	s.log.Info().
		Str("red", rep.Red.Name).Str("blue", rep.Blue.Name).
		Int("red_wins", rep.Red.Wins).Int("blue_wins", rep.Blue.Wins).
		Int("draws", rep.Draws).
		Msg("duel run complete")
}

// --- Run history handlers ---

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "run persistence is disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.store.ListRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "run persistence is disabled")
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	run, err := s.store.GetRun(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// --- Websocket duel stream ---

type wsMsg struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// handleWSDuel upgrades the connection, reads one duel request, and streams
// every burst of a single seeded duel followed by a summary message.
func (s *Server) handleWSDuel(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req duelRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(wsMsg{Type: "error", Data: "invalid duel request: " + err.Error()})
		return
	}
	ds, msg, ok := s.setup(req)
	if !ok {
		_ = conn.WriteJSON(wsMsg{Type: "error", Data: msg})
		return
	}
	if err := ds.runner.Validate(); err != nil {
		_ = conn.WriteJSON(wsMsg{Type: "error", Data: err.Error()})
		return
	}

	sample := ds.runner.Duel(ds.seed, func(ev sim.BurstEvent) {
		_ = conn.WriteJSON(wsMsg{Type: "burst", Data: ev})
	})
	_ = conn.WriteJSON(wsMsg{Type: "result", Data: map[string]any{
		"winner": sample.Winner,
		"rounds": sample.Rounds,
		"seed":   sample.Seed,
	}})
	s.log.Debug().Str("winner", sample.Winner).Int("rounds", sample.Rounds).Msg("streamed duel finished")
}
