// Package config loads taxflow settings from viper.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/taxflow/internal/common"
	"github.com/Veraticus/taxflow/internal/engine"
	"github.com/Veraticus/taxflow/internal/model"
	"github.com/spf13/viper"
)

// DefaultDatabasePath is where imported schedules are stored.
const DefaultDatabasePath = "$HOME/.local/share/taxflow/schedules.db"

// Settings is the resolved application configuration.
type Settings struct {
	Jurisdiction  model.Jurisdiction
	FilingStatus  model.FilingStatus
	DatabasePath  string
	LogLevel      string
	LogFormat     string
	Theme         string
	Year          int
	InflationRate float64
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("defaults.jurisdiction", string(model.JurisdictionUSFederal))
	v.SetDefault("defaults.status", string(model.StatusSingle))
	v.SetDefault("defaults.year", 0)
	v.SetDefault("tax.inflation_rate", engine.DefaultInflationRate)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("ui.theme", "default")
}

// Load reads and validates settings from v. A zero defaults.year resolves to
// the current calendar year.
func Load(v *viper.Viper) (Settings, error) {
	status, err := model.ParseFilingStatus(v.GetString("defaults.status"))
	if err != nil {
		return Settings{}, fmt.Errorf("%w: defaults.status: %w", common.ErrInvalidConfig, err)
	}

	s := Settings{
		Jurisdiction:  model.Jurisdiction(strings.TrimSpace(v.GetString("defaults.jurisdiction"))),
		FilingStatus:  status,
		Year:          v.GetInt("defaults.year"),
		InflationRate: v.GetFloat64("tax.inflation_rate"),
		DatabasePath:  ExpandPath(v.GetString("database.path")),
		LogLevel:      v.GetString("logging.level"),
		LogFormat:     v.GetString("logging.format"),
		Theme:         v.GetString("ui.theme"),
	}

	if s.Year == 0 {
		s.Year = time.Now().Year()
	}
	if s.Jurisdiction == "" {
		return Settings{}, fmt.Errorf("%w: defaults.jurisdiction is empty", common.ErrInvalidConfig)
	}
	if s.Year < 0 {
		return Settings{}, fmt.Errorf("%w: defaults.year %d", common.ErrInvalidConfig, s.Year)
	}
	if math.IsNaN(s.InflationRate) || s.InflationRate < 0 || s.InflationRate > 1 {
		return Settings{}, fmt.Errorf("%w: tax.inflation_rate %v outside [0,1]", common.ErrInvalidConfig, s.InflationRate)
	}
	if s.DatabasePath == "" {
		return Settings{}, fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}

	return s, nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") || path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
