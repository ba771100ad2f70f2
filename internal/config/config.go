// Package config resolves runtime settings from flags, environment and defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "INSPO"

// Config holds the resolved settings
type Config struct {
	Addr    string
	Catalog string
	DB      string
	Debug   bool
}

// Keys read by Load
const (
	KeyAddr    = "addr"
	KeyCatalog = "catalog"
	KeyDB      = "db"
	KeyDebug   = "debug"
)

// New returns a viper instance with defaults and INSPO_* environment binding
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyCatalog, "")
	v.SetDefault(KeyDB, defaultDBPath())
	v.SetDefault(KeyDebug, false)

	return v
}

// Load reads the settings out of v
func Load(v *viper.Viper) Config {
	return Config{
		Addr:    v.GetString(KeyAddr),
		Catalog: v.GetString(KeyCatalog),
		DB:      v.GetString(KeyDB),
		Debug:   v.GetBool(KeyDebug),
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "inspo.db"
	}
	return filepath.Join(home, ".inspo", "swipe.db")
}
