// Package store persists simulation runs to SQLite through GORM so balance
// analysis can compare matchups across sessions.
package store

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pellog/skirmish/internal/sim"
)

// SimulationRun is one persisted Monte-Carlo run: the matchup, its
// parameters, and the aggregated outcome.
type SimulationRun struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Seed      int64
	Duels     int
	MaxRounds int

	RedName    string
	RedWeapon  string
	BlueName   string
	BlueWeapon string

	RedWins   int
	BlueWins  int
	Draws     int
	AvgRounds float64

	RedAccuracy  float64
	BlueAccuracy float64

	Samples []DuelRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// DuelRecord is one duel inside a run.
type DuelRecord struct {
	ID    uint `gorm:"primaryKey"`
	RunID uint `gorm:"index"`

	Seed       int64
	Winner     string
	Rounds     int
	RedDamage  float64
	BlueDamage float64
	RedShots   int
	RedHits    int
	BlueShots  int
	BlueHits   int
}

// NewRun flattens a report into a persistable run. Weapon IDs travel
// separately because the report only carries loadout names.
func NewRun(seed int64, maxRounds int, redWeapon, blueWeapon string, rep *sim.Report) SimulationRun {
	run := SimulationRun{
		Seed:         seed,
		Duels:        rep.Duels,
		MaxRounds:    maxRounds,
		RedName:      rep.Red.Name,
		RedWeapon:    redWeapon,
		BlueName:     rep.Blue.Name,
		BlueWeapon:   blueWeapon,
		RedWins:      rep.Red.Wins,
		BlueWins:     rep.Blue.Wins,
		Draws:        rep.Draws,
		AvgRounds:    rep.AvgRounds,
		RedAccuracy:  rep.Red.Accuracy(),
		BlueAccuracy: rep.Blue.Accuracy(),
	}
	for _, s := range rep.Samples {
		run.Samples = append(run.Samples, DuelRecord{
			Seed:       s.Seed,
			Winner:     s.Winner,
			Rounds:     s.Rounds,
			RedDamage:  s.RedDamage,
			BlueDamage: s.BlueDamage,
			RedShots:   s.RedShots,
			RedHits:    s.RedHits,
			BlueShots:  s.BlueShots,
			BlueHits:   s.BlueHits,
		})
	}
	return run
}

// Store wraps the GORM connection.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to the SQLite database at path, creating it and migrating
// the schema as needed. An empty path opens an in-memory database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db at %q: %w", dsn, err)
	}
	if err := db.AutoMigrate(&SimulationRun{}, &DuelRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	log.Info().Str("path", dsn).Msg("store ready")
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun persists a run together with its duel records.
func (s *Store) SaveRun(run *SimulationRun) error {
	if err := s.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	s.log.Debug().Uint("run", run.ID).Int("duels", run.Duels).Msg("run saved")
	return nil
}

// ListRuns returns the most recent runs, newest first, without samples.
func (s *Store) ListRuns(limit int) ([]SimulationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []SimulationRun
	err := s.db.Order("created_at desc, id desc").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its duel records, or gorm.ErrRecordNotFound.
func (s *Store) GetRun(id uint) (*SimulationRun, error) {
	var run SimulationRun
	err := s.db.Preload("Samples").First(&run, id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}
