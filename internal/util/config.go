package util

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	HistoryPath  string `toml:"history_path"`
	HistoryLimit int    `toml:"history_limit"`
	LogLevel     string `toml:"log_level"`
	LogFile      string `toml:"log_file"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		HistoryPath:  defaultHistoryPath(),
		HistoryLimit: 500,
		LogLevel:     "error",
	}
}

// LoadConfiguration layers the TOML file at path over the defaults. An empty
// path or a missing file yields the defaults; a malformed file is an error.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	return cfg, nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mython_history.db"
	}
	return filepath.Join(home, ".mython_history.db")
}
