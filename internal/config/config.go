package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SimConfig holds default simulation parameters used when a request
// does not override them.
type SimConfig struct {
	Duels     int   `json:"duels" mapstructure:"duels"`
	MaxRounds int   `json:"maxRounds" mapstructure:"maxRounds"`
	Seed      int64 `json:"seed" mapstructure:"seed"`
}

// DBConfig holds SQLite storage settings.
type DBConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("listenAddr", ":8080")
	viper.SetDefault("definitionsDir", "./definitions")

	viper.SetDefault("db.path", "./skirmish.db")

	viper.SetDefault("sim.duels", 200)
	viper.SetDefault("sim.maxRounds", 200)
	viper.SetDefault("sim.seed", 1)

	viper.SetConfigName("skirmish.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetSimConfig returns the default simulation parameters.
func GetSimConfig() SimConfig {
	return SimConfig{
		Duels:     viper.GetInt("sim.duels"),
		MaxRounds: viper.GetInt("sim.maxRounds"),
		Seed:      viper.GetInt64("sim.seed"),
	}
}

// GetDBConfig returns the SQLite storage settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Path: viper.GetString("db.path"),
	}
}
