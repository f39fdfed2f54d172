package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"movebot/internal/i18n"
	"movebot/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Telegram   TelegramConfig `yaml:"telegram"`
	Catalog    CatalogConfig  `yaml:"catalog"`
	Workout    WorkoutConfig  `yaml:"workout"`
	Schedule   ScheduleConfig `yaml:"schedule"`
	Store      StoreConfig    `yaml:"store"`
	Stats      StatsConfig    `yaml:"stats"`
	HTTP       HTTPConfig     `yaml:"http"`
	Log        LogConfig      `yaml:"log"`
	Language   string         `yaml:"language"`
	LocalesDir string         `yaml:"locales_dir"`
}

type TelegramConfig struct {
	Token     string `yaml:"token"`
	ChannelID int64  `yaml:"channel_id"`
	// BotName overrides the username reported by the API for mention matching.
	BotName string `yaml:"bot_name"`
	Debug   bool   `yaml:"debug"`
	Workers int    `yaml:"workers"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type WorkoutConfig struct {
	StrengthCount int `yaml:"strength_count"`
	MobilityCount int `yaml:"mobility_count"`
}

type ScheduleConfig struct {
	MinMinutes     int    `yaml:"min_minutes"`
	MaxMinutes     int    `yaml:"max_minutes"`
	ActiveFrom     int    `yaml:"active_from"`
	ActiveTo       int    `yaml:"active_to"`
	Weekends       bool   `yaml:"weekends"`
	Timezone       string `yaml:"timezone"`
	RunImmediately bool   `yaml:"run_immediately"`
}

// Location resolves Timezone, defaulting to the local zone.
func (s ScheduleConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

// Options converts the section into store options.
func (s StoreConfig) Options() store.Options {
	return store.Options{Driver: s.Driver, Path: s.Path, DSN: s.DSN}
}

type StatsConfig struct {
	IncludePending bool `yaml:"include_pending"`
}

type HTTPConfig struct {
	// Addr is empty when the status API is disabled.
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{Path: "exercises.json"},
		Telegram: TelegramConfig{
			Workers: 4,
		},
		Workout: WorkoutConfig{StrengthCount: 2, MobilityCount: 1},
		Schedule: ScheduleConfig{
			MinMinutes: 45,
			MaxMinutes: 90,
			ActiveFrom: 8,
			ActiveTo:   17,
		},
		Store:    StoreConfig{Driver: store.DriverCSV, Path: "workouts.csv"},
		Log:      LogConfig{Level: "info"},
		Language: string(i18n.DefaultLang),
	}
}

// Load reads the YAML file at path (skipped when empty), then applies MOVEBOT_ overrides
// from the environment or a .env file in the working directory. Real environment
// variables win over .env entries.
//
//	MOVEBOT_TELEGRAM_TOKEN, MOVEBOT_TELEGRAM_CHANNEL_ID,
//	MOVEBOT_STORE_DRIVER, MOVEBOT_STORE_PATH, MOVEBOT_STORE_DSN,
//	MOVEBOT_CATALOG_PATH, MOVEBOT_HTTP_ADDR, MOVEBOT_LOG_LEVEL, MOVEBOT_LANGUAGE
func Load(path string) (*Config, error) {
	return load(path, ".env", true)
}

// LoadLocal is Load without the Telegram checks, for commands that never connect.
func LoadLocal(path string) (*Config, error) {
	return load(path, ".env", false)
}

func load(path, envFile string, requireTelegram bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	env, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
		env = map[string]string{}
	}

	if err := applyEnvOverrides(cfg, env); err != nil {
		return nil, err
	}

	if err := cfg.validate(requireTelegram); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config, env map[string]string) error {
	getEnv := func(key string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		return env[key]
	}

	if v := getEnv("MOVEBOT_TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := getEnv("MOVEBOT_TELEGRAM_CHANNEL_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MOVEBOT_TELEGRAM_CHANNEL_ID: %w", err)
		}
		cfg.Telegram.ChannelID = id
	}
	if v := getEnv("MOVEBOT_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := getEnv("MOVEBOT_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := getEnv("MOVEBOT_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := getEnv("MOVEBOT_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := getEnv("MOVEBOT_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := getEnv("MOVEBOT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := getEnv("MOVEBOT_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	return nil
}

func (c *Config) validate(requireTelegram bool) error {
	if requireTelegram {
		if c.Telegram.Token == "" {
			return fmt.Errorf("telegram.token is required")
		}
		if c.Telegram.ChannelID == 0 {
			return fmt.Errorf("telegram.channel_id is required")
		}
	}
	if c.Telegram.Workers < 1 {
		return fmt.Errorf("telegram.workers must be positive, got %d", c.Telegram.Workers)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.Workout.StrengthCount < 0 || c.Workout.MobilityCount < 0 {
		return fmt.Errorf("workout counts must not be negative")
	}
	if c.Workout.StrengthCount+c.Workout.MobilityCount == 0 {
		return fmt.Errorf("workout needs at least one exercise")
	}

	s := c.Schedule
	if s.MinMinutes < 1 {
		return fmt.Errorf("schedule.min_minutes must be at least 1, got %d", s.MinMinutes)
	}
	if s.MinMinutes > s.MaxMinutes {
		return fmt.Errorf("schedule.min_minutes (%d) exceeds schedule.max_minutes (%d)", s.MinMinutes, s.MaxMinutes)
	}
	if s.ActiveFrom < 0 || s.ActiveFrom > 23 || s.ActiveTo < 0 || s.ActiveTo > 23 {
		return fmt.Errorf("schedule active hours must be within 0-23")
	}
	if s.ActiveFrom > s.ActiveTo {
		return fmt.Errorf("schedule.active_from (%d) is after schedule.active_to (%d)", s.ActiveFrom, s.ActiveTo)
	}
	if _, err := s.Location(); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}

	switch c.Store.Driver {
	case store.DriverCSV:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the csv driver")
		}
	case store.DriverPostgres, store.DriverSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	if !i18n.IsValidLanguage(c.Language) {
		return fmt.Errorf("unsupported language %q", c.Language)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// MinInterval is the shortest delay between two workouts.
func (s ScheduleConfig) MinInterval() time.Duration {
	return time.Duration(s.MinMinutes) * time.Minute
}

// MaxInterval is the longest delay between two workouts.
func (s ScheduleConfig) MaxInterval() time.Duration {
	return time.Duration(s.MaxMinutes) * time.Minute
}
