package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/course-planner/internal/common"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("PLANNER_TEST_DIR", "/data")

	tests := map[string]string{
		"":                          "",
		"~":                         home,
		"~/planner.db":              filepath.Join(home, "planner.db"),
		"$PLANNER_TEST_DIR/courses": "/data/courses",
		"/abs/path":                 "/abs/path",
	}
	for in, want := range tests {
		assert.Equal(t, want, ExpandPath(in), in)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("PLANNER_TEST_DIR", "/data")

	tests := []struct {
		base string
		path string
		want string
	}{
		{base: "/etc/planner", path: "", want: ""},
		{base: "/etc/planner", path: "courses", want: "/etc/planner/courses"},
		{base: "/etc/planner", path: "../reqs.csv", want: "/etc/reqs.csv"},
		{base: "/etc/planner", path: "/abs/courses", want: "/abs/courses"},
		{base: "/etc/planner", path: "$PLANNER_TEST_DIR/topics.yaml", want: "/data/topics.yaml"},
		{base: "", path: "courses", want: "courses"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolvePath(tt.base, tt.path), tt.path)
	}
}

func TestLoadSettingsResolvesConfigPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`catalog:
  dir: courses
requirements:
  path: /srv/reqs.xlsx
`), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	v.Set(KeyTopicsPath, "topics.yaml")

	s := LoadSettings(v)
	assert.Equal(t, filepath.Join(dir, "courses"), s.CatalogDir)
	assert.Equal(t, "/srv/reqs.xlsx", s.RequirementsPath)
	assert.Equal(t, "topics.yaml", s.TopicsPath)
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr string
	}{
		{name: "default is valid", mutate: func(*Profile) {}},
		{name: "one breadth area", mutate: func(p *Profile) { p.BreadthAreas = []string{"theory"} }, wantErr: "BreadthAreas"},
		{name: "blank breadth area", mutate: func(p *Profile) { p.BreadthAreas = []string{"theory", ""} }, wantErr: "BreadthAreas"},
		{
			name:    "three foundations",
			mutate:  func(p *Profile) { p.FoundationsNotSatisfied = []string{"logic", "probability", "systems"} },
			wantErr: "FoundationsNotSatisfied",
		},
		{name: "negative topic", mutate: func(p *Profile) { p.Topics = map[string]int{"nlp": -1} }, wantErr: "Topics"},
		{name: "zero years", mutate: func(p *Profile) { p.Years = 0 }, wantErr: "Years"},
		{name: "topic minimums", mutate: func(p *Profile) { p.Topics = map[string]int{"nlp": 2, "vision": 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProfile()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadProfile(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
profile:
  name: ada
  breadth_areas: [society, applications]
  foundations_not_satisfied: [logic]
  topics:
    nlp: 2
  years: 3
  internship_quarter: 4
  waived: [CS 107]
`)))

	p, err := LoadProfile(v)
	require.NoError(t, err)
	assert.Equal(t, "ada", p.Name)
	assert.Equal(t, []string{"society", "applications"}, p.BreadthAreas)
	assert.Equal(t, []string{"logic"}, p.FoundationsNotSatisfied)
	assert.Equal(t, map[string]int{"nlp": 2}, p.Topics)
	assert.Equal(t, 4, p.InternshipQuarter)
	assert.Equal(t, []string{"CS 107"}, p.Waived)
	assert.Equal(t, 12, p.MaxQuarter())
}

func TestLoadProfileDefaults(t *testing.T) {
	p, err := LoadProfile(viper.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), p)
}

func TestLoadProfileInvalid(t *testing.T) {
	v := viper.New()
	v.Set("profile", map[string]any{"breadth_areas": []string{"theory"}, "years": 1})

	_, err := LoadProfile(v)
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadSettings(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyDatabaseDSN, ":memory:")
	v.Set(KeyCatalogDir, "/srv/catalog")

	s := LoadSettings(v)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "sqlite3", s.DatabaseDriver)
	assert.Equal(t, ":memory:", s.DatabaseDSN)
	assert.Equal(t, "/srv/catalog", s.CatalogDir)
	assert.Equal(t, []string{"2021-2022", "2022-2023"}, s.CatalogYears)
	assert.Equal(t, []string{"CS"}, s.CatalogDepts)
}
