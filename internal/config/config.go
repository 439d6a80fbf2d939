// Package config loads service configuration from file and environment.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	Log struct {
		Level       string
		Development bool
	} `mapstructure:"log"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	API struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"api"`

	Storage struct {
		Path string
	} `mapstructure:"storage"`

	Sync struct {
		ProbeInterval time.Duration `mapstructure:"probe_interval"`
		BatchSize     int           `mapstructure:"batch_size"`
	} `mapstructure:"sync"`

	Units struct {
		PaletteFactor int64 `mapstructure:"palette_factor"`
	} `mapstructure:"units"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("storage.path", "warenbuchung.db")
	v.SetDefault("sync.probe_interval", 10*time.Second)
	v.SetDefault("sync.batch_size", 50)
	v.SetDefault("units.palette_factor", 80)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		// A missing file means defaults plus environment.
		if !errors.Is(err, fs.ErrNotExist) {
			return c, err
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
