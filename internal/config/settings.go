package config

import (
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyLogLevel          = "logging.level"
	KeyLogFormat         = "logging.format"
	KeyDatabaseDriver    = "database.driver"
	KeyDatabaseDSN       = "database.dsn"
	KeyCatalogDir        = "catalog.dir"
	KeyCatalogYears      = "catalog.years"
	KeyCatalogDepts      = "catalog.departments"
	KeyRequirementsPath  = "requirements.path"
	KeyRequirementsSheet = "requirements.sheet"
	KeyTopicsPath        = "topics.path"
	KeyMetricsTextfile   = "metrics.textfile"
)

// Settings are the non-profile configuration values.
type Settings struct {
	LogLevel          string
	LogFormat         string
	DatabaseDriver    string
	DatabaseDSN       string
	CatalogDir        string
	RequirementsPath  string
	RequirementsSheet string
	TopicsPath        string
	MetricsTextfile   string
	CatalogYears      []string
	CatalogDepts      []string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyDatabaseDriver, "sqlite3")
	v.SetDefault(KeyDatabaseDSN, "~/.local/share/planner/planner.db")
	v.SetDefault(KeyCatalogYears, []string{"2021-2022", "2022-2023"})
	v.SetDefault(KeyCatalogDepts, []string{"CS"})
}

// LoadSettings reads Settings from v. Catalog, requirement and topic paths
// from the config file are resolved against its directory.
func LoadSettings(v *viper.Viper) Settings {
	s := Settings{
		LogLevel:          v.GetString(KeyLogLevel),
		LogFormat:         v.GetString(KeyLogFormat),
		DatabaseDriver:    v.GetString(KeyDatabaseDriver),
		DatabaseDSN:       v.GetString(KeyDatabaseDSN),
		CatalogDir:        configPath(v, KeyCatalogDir),
		RequirementsPath:  configPath(v, KeyRequirementsPath),
		RequirementsSheet: v.GetString(KeyRequirementsSheet),
		TopicsPath:        configPath(v, KeyTopicsPath),
		MetricsTextfile:   ExpandPath(v.GetString(KeyMetricsTextfile)),
		CatalogYears:      v.GetStringSlice(KeyCatalogYears),
		CatalogDepts:      v.GetStringSlice(KeyCatalogDepts),
	}
	if s.DatabaseDriver == "sqlite3" {
		s.DatabaseDSN = ExpandPath(s.DatabaseDSN)
	}
	return s
}
