// Package config holds the tool settings shared by the CLIs and the
// switch engine.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Settings are the user-tunable switches. Defaults match the tool's
// stored preferences.
type Settings struct {
	// ShowRotateOrder offers the rotation-order attribute as a switch.
	ShowRotateOrder bool `mapstructure:"showRotateOrder"`
	// EulerFilter runs the unwrap filter after every apply.
	EulerFilter bool `mapstructure:"eulerFilter"`
	// AllFrames bakes every keyed frame by default.
	AllFrames bool `mapstructure:"allFrames"`
	// NamespaceDisplay keeps namespace prefixes in reported node names.
	NamespaceDisplay bool `mapstructure:"namespaceDisplay"`

	LogLevel string `mapstructure:"logLevel"`
}

// Load reads camstool.yaml from configDir, falling back to defaults when
// no file exists.
func Load(configDir string) (Settings, error) {
	v := viper.New()
	v.SetDefault("showRotateOrder", true)
	v.SetDefault("eulerFilter", true)
	v.SetDefault("allFrames", false)
	v.SetDefault("namespaceDisplay", false)
	v.SetDefault("logLevel", "info")

	v.SetConfigName("camstool")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return s, nil
}
