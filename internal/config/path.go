// Package config loads planner settings and the student profile from viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ExpandPath expands a leading ~ and $VAR references in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}

// ResolvePath expands path and anchors it at base when it is still
// relative. An empty base leaves it relative to the working directory.
func ResolvePath(base, path string) string {
	path = ExpandPath(path)
	if path == "" || base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// configPath reads a path setting. Values written in the config file are
// relative to that file; flags and environment values are not.
func configPath(v *viper.Viper, key string) string {
	base := ""
	if file := v.ConfigFileUsed(); file != "" && v.InConfig(key) {
		base = filepath.Dir(file)
	}
	return ResolvePath(base, v.GetString(key))
}
