// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Quiz  QuizConfig  `toml:"quiz"`
	Serve ServeConfig `toml:"serve"`
}

// QuizConfig maps quiz-related settings.
type QuizConfig struct {
	Email         *string   `toml:"email"`
	Amount        *int      `toml:"amount"`
	Category      *int      `toml:"category"`
	Difficulty    *string   `toml:"difficulty"`
	Type          *string   `toml:"type"`
	TimeLimit     *Duration `toml:"time-limit"`
	APIURL        *string   `toml:"api-url"`
	Timeout       *Duration `toml:"timeout"`
	QuestionsFile *string   `toml:"questions-file"`
}

// ServeConfig maps proxy settings.
type ServeConfig struct {
	Addr     *string   `toml:"addr"`
	Upstream *string   `toml:"upstream"`
	CacheTTL *Duration `toml:"cache-ttl"`
	Timeout  *Duration `toml:"timeout"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
