package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Editor      EditorConfig      `toml:"editor"`
	Session     SessionConfig     `toml:"session"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Supabase SupabaseConfig `toml:"supabase"`
	Soniox   SonioxConfig   `toml:"soniox"`
}

// SupabaseConfig contains the hosted backend's project URL and anonymous API key.
type SupabaseConfig struct {
	URL     string `toml:"url"`
	AnonKey string `toml:"anon_key"`
}

// SonioxConfig contains speech-to-text credentials and streaming options.
type SonioxConfig struct {
	APIKey        string   `toml:"api_key"`
	Model         string   `toml:"model"`
	LanguageHints []string `toml:"language_hints"`
}

// DatabaseConfig contains local cache database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// EditorConfig contains entry editor settings.
type EditorConfig struct {
	AutosaveSeconds int `toml:"autosave_seconds"`
}

// SessionConfig contains session lifetime settings.
type SessionConfig struct {
	IdleMinutes int `toml:"idle_minutes"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
