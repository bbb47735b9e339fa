package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/sacredcombat/internal/model"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SACREDCOMBAT_"

// Store drivers.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Sim holds all configuration for the battle simulator.
type Sim struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Monte-Carlo batch
	Seed    uint64 `yaml:"seed" env:"SEED"`
	Runs    int    `yaml:"runs" env:"RUNS"`
	Workers int    `yaml:"workers" env:"WORKERS"`

	// ContentDir overrides the embedded content tables when set.
	ContentDir string `yaml:"content_dir" env:"CONTENT_DIR"`

	Battle Battle `yaml:"battle" envPrefix:"BATTLE_"`
	Store  Store  `yaml:"store" envPrefix:"STORE_"`
}

// Battle describes the scripted encounter: one attacking unit with its allies
// against a roster of enemies, all named by unit template id.
type Battle struct {
	Attacker string   `yaml:"attacker" env:"ATTACKER"`
	Allies   []string `yaml:"allies" env:"ALLIES" envSeparator:","`
	Enemies  []string `yaml:"enemies" env:"ENEMIES" envSeparator:","`
	Turns    int      `yaml:"turns" env:"TURNS"`
}

// Store selects where battle reports go.
type Store struct {
	Driver     string         `yaml:"driver" env:"DRIVER"`
	SQLitePath string         `yaml:"sqlite_path" env:"SQLITE_PATH"`
	Database   DatabaseConfig `yaml:"database" envPrefix:"DB_"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSim returns Sim config with sensible defaults.
func DefaultSim() Sim {
	return Sim{
		LogLevel: "info",
		Seed:     1,
		Runs:     1000,
		Workers:  4,
		Battle: Battle{
			Attacker: "apollo",
			Enemies:  []string{"sentinel", "dummy", "dummy_broken", "sage"},
			Turns:    5,
		},
		Store: Store{
			Driver:     DriverSQLite,
			SQLitePath: "battles.db",
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "sacredcombat",
				Password: "sacredcombat",
				DBName:   "sacredcombat",
				SSLMode:  "disable",
			},
		},
	}
}

// LoadSim loads simulator config from a YAML file, then applies
// SACREDCOMBAT_* environment overrides. If the file doesn't exist, the
// overrides apply to the defaults.
func LoadSim(path string) (Sim, error) {
	cfg := DefaultSim()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, &model.ConfigError{Field: path, Err: err})
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the simulator cannot run with.
func (s Sim) Validate() error {
	if _, err := s.SlogLevel(); err != nil {
		return &model.ConfigError{Field: "log_level", Err: err}
	}
	if s.Runs < 0 {
		return &model.ConfigError{Field: "runs", Err: fmt.Errorf("must not be negative, got %d", s.Runs)}
	}
	if s.Workers < 1 {
		return &model.ConfigError{Field: "workers", Err: fmt.Errorf("must be at least 1, got %d", s.Workers)}
	}
	if s.Battle.Attacker == "" {
		return &model.ConfigError{Field: "battle.attacker", Err: errors.New("required")}
	}
	if len(s.Battle.Enemies) == 0 {
		return &model.ConfigError{Field: "battle.enemies", Err: errors.New("at least one enemy required")}
	}
	if s.Battle.Turns < 1 {
		return &model.ConfigError{Field: "battle.turns", Err: fmt.Errorf("must be at least 1, got %d", s.Battle.Turns)}
	}
	switch s.Store.Driver {
	case DriverNone, DriverSQLite, DriverPostgres:
	default:
		return &model.ConfigError{Field: "store.driver", Err: fmt.Errorf("unknown driver %q", s.Store.Driver)}
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (s Sim) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return lvl, err
	}
	return lvl, nil
}
