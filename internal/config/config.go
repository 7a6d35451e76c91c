package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/urbanform/walkability/internal/classify"
	"github.com/urbanform/walkability/internal/network"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Walking  WalkingConfig  `yaml:"walking" mapstructure:"walking"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Grid     GridConfig     `yaml:"grid" mapstructure:"grid"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// InputConfig points at the path data to analyze.
type InputConfig struct {
	// Format is "geojson" or "shapefile".
	Format string `yaml:"format" mapstructure:"format"`
	Path   string `yaml:"path" mapstructure:"path"`
	// Boundary is an optional GeoJSON file with the area-of-interest
	// polygon; paths outside it are dropped before analysis.
	Boundary string `yaml:"boundary" mapstructure:"boundary"`
}

// WalkingConfig sets the pedestrian the indicators are computed for.
type WalkingConfig struct {
	// Speed is a preset: "slow" (2 km/h), "medium" (4 km/h) or "fast"
	// (6 km/h). SpeedKmh, when positive, overrides the preset.
	Speed       string  `yaml:"speed" mapstructure:"speed"`
	SpeedKmh    float64 `yaml:"speed_kmh" mapstructure:"speed_kmh"`
	TripMinutes float64 `yaml:"trip_minutes" mapstructure:"trip_minutes"`
}

// AnalysisConfig tunes the indicator computations.
type AnalysisConfig struct {
	// Decay selects the distance weighting: "none", "polynomial" or "step".
	Decay string `yaml:"decay" mapstructure:"decay"`
	// IncludedCategories restricts which categories count as potentially
	// walkable. Empty means every category except not_walkable.
	IncludedCategories []string `yaml:"included_categories" mapstructure:"included_categories"`
	// DetourRadiusScale multiplies the walking range for detour routing.
	DetourRadiusScale float64 `yaml:"detour_radius_scale" mapstructure:"detour_radius_scale"`
	// Ratings overrides the per-category rating values.
	Ratings map[string]float64 `yaml:"ratings" mapstructure:"ratings"`
	Workers int                `yaml:"workers" mapstructure:"workers"`
}

// GridConfig configures the hexagonal aggregation grid.
type GridConfig struct {
	// CellM is the center-to-center spacing of adjacent cells in meters.
	CellM float64 `yaml:"cell_m" mapstructure:"cell_m"`
}

// OutputConfig configures the GeoJSON artifacts.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// speedPresets maps the named walking speeds to km/h.
var speedPresets = map[string]float64{
	"slow":   2,
	"medium": 4,
	"fast":   6,
}

// SpeedKmhResolved returns the effective walking speed.
func (w WalkingConfig) SpeedKmhResolved() (float64, error) {
	if w.SpeedKmh > 0 {
		return w.SpeedKmh, nil
	}
	speed, ok := speedPresets[w.Speed]
	if !ok {
		return 0, eris.Errorf("config: unknown walking speed preset %q", w.Speed)
	}
	return speed, nil
}

// MaxWalkingDistanceM converts speed and trip time into the beeline search
// radius in meters.
func (w WalkingConfig) MaxWalkingDistanceM() (float64, error) {
	speed, err := w.SpeedKmhResolved()
	if err != nil {
		return 0, err
	}
	return speed * 1000 / 60 * w.TripMinutes, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if _, err := c.Walking.SpeedKmhResolved(); err != nil {
		return err
	}
	if c.Walking.TripMinutes <= 0 {
		return eris.New("config: walking.trip_minutes must be positive")
	}
	if _, err := network.SelectDecay(c.Analysis.Decay); err != nil {
		return err
	}
	if c.Analysis.DetourRadiusScale <= 0 {
		return eris.New("config: analysis.detour_radius_scale must be positive")
	}
	if c.Grid.CellM <= 0 {
		return eris.New("config: grid.cell_m must be positive")
	}
	for _, name := range c.Analysis.IncludedCategories {
		if !classify.Category(name).Valid() {
			return eris.Errorf("config: unknown category %q in analysis.included_categories", name)
		}
	}
	if len(c.Analysis.Ratings) > 0 {
		if err := c.RatingMap().Validate(); err != nil {
			return eris.Wrap(err, "config: analysis.ratings")
		}
	}
	return nil
}

// IncludedSet resolves the configured category filter.
func (c *Config) IncludedSet() classify.IncludedSet {
	if len(c.Analysis.IncludedCategories) == 0 {
		return classify.DefaultIncluded()
	}
	set := make(classify.IncludedSet, len(c.Analysis.IncludedCategories))
	for _, name := range c.Analysis.IncludedCategories {
		set[classify.Category(name)] = true
	}
	return set
}

// RatingMap resolves the configured rating overrides on top of the defaults.
func (c *Config) RatingMap() classify.RatingMap {
	ratings := classify.DefaultRatings()
	for name, value := range c.Analysis.Ratings {
		ratings[classify.Category(name)] = value
	}
	return ratings
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WALKABILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "walkability.db")
	v.SetDefault("input.format", "geojson")
	v.SetDefault("walking.speed", "medium")
	v.SetDefault("walking.trip_minutes", 15)
	v.SetDefault("analysis.decay", network.DecayNameStep)
	v.SetDefault("analysis.detour_radius_scale", 2.0)
	v.SetDefault("grid.cell_m", 250)
	v.SetDefault("output.dir", "out")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
