package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds application settings for the CLI, server and TUI.
type Settings struct {
	Tables   TablesSettings
	Server   ServerSettings
	Database DatabaseSettings
	Log      LogSettings
	Output   OutputSettings
}

// TablesSettings selects the fiscal table file; empty means the embedded
// reference tables.
type TablesSettings struct {
	Path string
}

// ServerSettings holds HTTP listener settings.
type ServerSettings struct {
	Addr string
}

// DatabaseSettings holds sqlite settings.
type DatabaseSettings struct {
	Path string
}

// LogSettings holds logging settings.
type LogSettings struct {
	Level string
}

// OutputSettings holds presentation settings.
type OutputSettings struct {
	Format string
}

// LoadSettings reads settings from an optional YAML file and the environment.
// Env var overrides use prefix ISRMX_ (ISRMX_SERVER_ADDR, ISRMX_LOG_LEVEL, ...).
// An explicit settingsFile that cannot be read is an error; the default
// location is optional.
func LoadSettings(settingsFile string) (Settings, error) {
	v := viper.New()

	v.SetDefault("tables.path", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.path", filepath.Join(dataHome(), "isrmx", "isrmx.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("output.format", "console")

	v.SetConfigType("yaml")
	if settingsFile == "" {
		settingsFile = os.Getenv("ISRMX_CONFIG")
	}
	explicit := settingsFile != ""
	if explicit {
		v.SetConfigFile(settingsFile)
	} else {
		v.AddConfigPath(filepath.Join(configHome(), "isrmx"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ISRMX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && explicit {
		return Settings{}, fmt.Errorf("read settings %s: %w", settingsFile, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return s, nil
}

func configHome() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share")
}
