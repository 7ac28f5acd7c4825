package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig drives lifelinectl.
type ClientConfig struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Table   TableConfig   `mapstructure:"table"`
	Log     LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	File string `mapstructure:"file"`
}

type TableConfig struct {
	PageSize    int           `mapstructure:"page_size"`
	ReloadDelay time.Duration `mapstructure:"reload_delay"`
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "lifeline", "session.json")
}

// LoadClient reads lifeline.yml from the working directory or the user config
// directory; LIFELINE_* environment variables override it.
func LoadClient() (*ClientConfig, error) {
	v := viper.New()
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "lifeline"))
	}
	v.SetConfigName("lifeline")
	v.SetConfigType("yml")

	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("session.file", defaultSessionFile())
	v.SetDefault("table.page_size", 10)
	v.SetDefault("table.reload_delay", 1500*time.Millisecond)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("lifeline")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
