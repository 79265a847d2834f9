// Package config provides Viper-based configuration loading for the
// mapper services.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// PathMachineConfig holds the tunable knobs of the path machine. Zero
// values fall back to the built-in defaults at wiring time, so a file
// only needs to name the knobs it changes.
type PathMachineConfig struct {
	// AcceptBestRelative is the relative probability lead at which the
	// best candidate path wins outright.
	AcceptBestRelative float64 `mapstructure:"accept_best_relative"`
	// AcceptBestAbsolute is the absolute probability lead at which the
	// best candidate path wins outright.
	AcceptBestAbsolute float64 `mapstructure:"accept_best_absolute"`
	// NewRoomPenalty divides the probability of paths through rooms
	// that exist only speculatively.
	NewRoomPenalty float64 `mapstructure:"new_room_penalty"`
	// MultipleConnectionsPenalty divides the probability of paths that
	// reuse already-connected exits.
	MultipleConnectionsPenalty float64 `mapstructure:"multiple_connections_penalty"`
	// CorrectPositionBonus multiplies the probability of paths whose
	// movement matches the room grid.
	CorrectPositionBonus float64 `mapstructure:"correct_position_bonus"`
	// MaxPaths caps the number of candidate paths kept alive.
	MaxPaths int `mapstructure:"max_paths"`
	// MatchingTolerance is the comparison budget handed to room
	// matching.
	MatchingTolerance int `mapstructure:"matching_tolerance"`
	// MaxSkippedLookahead bounds how many unrecognised rooms a path
	// may skip over.
	MaxSkippedLookahead int `mapstructure:"max_skipped_lookahead"`
}

// MapConfig holds map data file settings.
type MapConfig struct {
	// File is the path to the YAML map data file.
	File string `mapstructure:"file"`
}

// Config is the top-level application configuration.
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	PathMachine PathMachineConfig `mapstructure:"pathmachine"`
	Map         MapConfig         `mapstructure:"map"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePathMachine(c.PathMachine); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validatePathMachine(p PathMachineConfig) error {
	var errs []string
	if p.AcceptBestRelative < 0 {
		errs = append(errs, "pathmachine.accept_best_relative must not be negative")
	}
	if p.AcceptBestAbsolute < 0 {
		errs = append(errs, "pathmachine.accept_best_absolute must not be negative")
	}
	if p.NewRoomPenalty < 0 {
		errs = append(errs, "pathmachine.new_room_penalty must not be negative")
	}
	if p.MultipleConnectionsPenalty < 0 {
		errs = append(errs, "pathmachine.multiple_connections_penalty must not be negative")
	}
	if p.CorrectPositionBonus < 0 {
		errs = append(errs, "pathmachine.correct_position_bonus must not be negative")
	}
	if p.MaxPaths < 0 {
		errs = append(errs, fmt.Sprintf("pathmachine.max_paths must be >= 0, got %d", p.MaxPaths))
	}
	if p.MatchingTolerance < 0 {
		errs = append(errs, fmt.Sprintf("pathmachine.matching_tolerance must be >= 0, got %d", p.MatchingTolerance))
	}
	if p.MaxSkippedLookahead < 0 {
		errs = append(errs, fmt.Sprintf("pathmachine.max_skipped_lookahead must be >= 0, got %d", p.MaxSkippedLookahead))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies
// environment variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MAPCORE_ prefix
	v.SetEnvPrefix("MAPCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "mapcore")
	v.SetDefault("database.password", "mapcore")
	v.SetDefault("database.name", "mapcore")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("pathmachine.accept_best_relative", 25.0)
	v.SetDefault("pathmachine.accept_best_absolute", 6.0)
	v.SetDefault("pathmachine.new_room_penalty", 5.0)
	v.SetDefault("pathmachine.multiple_connections_penalty", 2.0)
	v.SetDefault("pathmachine.correct_position_bonus", 5.0)
	v.SetDefault("pathmachine.max_paths", 1000)
	v.SetDefault("pathmachine.matching_tolerance", 8)
	v.SetDefault("pathmachine.max_skipped_lookahead", 1)

	v.SetDefault("map.file", "data/map.yaml")
}
