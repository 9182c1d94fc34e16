package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values of the config file
const (
	EnvDatabaseURL = "CASTING_DATABASE_URL"
	EnvListenAddr  = "CASTING_LISTEN_ADDR"
)

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// AutoAssignConfig tunes the auto-assign solver
type AutoAssignConfig struct {
	DropUnscoredPairs bool `yaml:"dropUnscoredPairs"`
}

// SheetsConfig points at the spreadsheet castings are published to
type SheetsConfig struct {
	SpreadsheetID string `yaml:"spreadsheetID"`
}

// GmailConfig configures role announcement emails
type GmailConfig struct {
	Sender        string `yaml:"sender,omitempty" validate:"omitempty,email"`
	SubjectPrefix string `yaml:"subjectPrefix,omitempty"`
}

// Config represents the application configuration
type Config struct {
	ListenAddr         string           `yaml:"listenAddr" validate:"required,hostname_port"`
	Store              string           `yaml:"store" validate:"required,oneof=postgres memory"`
	DatabaseURL        string           `yaml:"databaseURL,omitempty" validate:"required_if=Store postgres"`
	MemorySeedFile     string           `yaml:"memorySeedFile,omitempty"`
	CORSAllowedOrigins []string         `yaml:"corsAllowedOrigins,omitempty" validate:"dive,url"`
	AutoAssign         AutoAssignConfig `yaml:"autoAssign"`
	Sheets             SheetsConfig     `yaml:"sheets"`
	Gmail              GmailConfig      `yaml:"gmail"`
	LogDir             string           `yaml:"logDir,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads the .env file if present, then loads and validates
// casting_config.<env>.yaml. It looks for the config file in the current
// directory first, then in the user's home directory.
func LoadWithEnv(env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Environment overrides are applied before validation.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.ListenAddr = v
	}
}

// findConfigFile searches for casting_config.<env>.yaml
func findConfigFile(env string) (string, error) {
	configFileName := "casting_config.yaml"
	if env != "" {
		configFileName = "casting_config." + env + ".yaml"
	}
	return locate(configFileName)
}

// locate returns the path of fileName in the current directory, falling back
// to the user's home directory
func locate(fileName string) (string, error) {
	if _, err := os.Stat(fileName); err == nil {
		return fileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, fileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", fileName)
}
