package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Cluster   ClusterConfig   `yaml:"cluster" mapstructure:"cluster"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the county dataset and its companion files.
type DataConfig struct {
	Source            string `yaml:"source" mapstructure:"source"` // csv, xlsx, sqlite, postgres
	Path              string `yaml:"path" mapstructure:"path"`
	Sheet             string `yaml:"sheet" mapstructure:"sheet"`
	Table             string `yaml:"table" mapstructure:"table"`
	DatabaseURL       string `yaml:"database_url" mapstructure:"database_url"`
	FramePath         string `yaml:"frame_path" mapstructure:"frame_path"`
	DictionaryPath    string `yaml:"dictionary_path" mapstructure:"dictionary_path"`
	MonthlyPath       string `yaml:"monthly_path" mapstructure:"monthly_path"`
	AnnualPath        string `yaml:"annual_path" mapstructure:"annual_path"`
	CountiesPath      string `yaml:"counties_path" mapstructure:"counties_path"`
	CountiesShapefile string `yaml:"counties_shapefile" mapstructure:"counties_shapefile"`
}

// ClusterConfig configures the k-means engine.
type ClusterConfig struct {
	K              int      `yaml:"k" mapstructure:"k"`
	Seed           uint64   `yaml:"seed" mapstructure:"seed"`
	MaxIterations  int      `yaml:"max_iterations" mapstructure:"max_iterations"`
	Tolerance      float64  `yaml:"tolerance" mapstructure:"tolerance"`
	Inits          int      `yaml:"inits" mapstructure:"inits"`
	Palette        []string `yaml:"palette" mapstructure:"palette"`
	DropIncomplete bool     `yaml:"drop_incomplete" mapstructure:"drop_incomplete"`
	SelectionsFile string   `yaml:"selections_file" mapstructure:"selections_file"`
}

// DashboardConfig holds the static page content.
type DashboardConfig struct {
	MinYear  int          `yaml:"min_year" mapstructure:"min_year"`
	EmbedURL string       `yaml:"embed_url" mapstructure:"embed_url"`
	Images   []ImageAsset `yaml:"images" mapstructure:"images"`
}

// ImageAsset is one image on the exploratory analysis page.
type ImageAsset struct {
	Path    string `yaml:"path" mapstructure:"path"`
	Caption string `yaml:"caption" mapstructure:"caption"`
	Width   int    `yaml:"width" mapstructure:"width"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultPalette is the cluster color order used by every chart.
var DefaultPalette = []string{"red", "green", "purple", "orange"}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WATER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.source", "csv")
	v.SetDefault("data.path", "data/clean-data/combined2.csv")
	v.SetDefault("data.table", "counties")
	v.SetDefault("data.frame_path", "data/clean-data/combined.csv")
	v.SetDefault("data.dictionary_path", "data/clean-data/data_dict.csv")
	v.SetDefault("data.monthly_path", "data/clean-data/Monthly_Temp_Drought_Combo.csv")
	v.SetDefault("data.annual_path", "data/clean-data/Temp_Drought_Combo.csv")
	v.SetDefault("data.counties_path", "data/raw-data/counties.csv")
	v.SetDefault("cluster.k", 4)
	v.SetDefault("cluster.seed", 42)
	v.SetDefault("cluster.max_iterations", 300)
	v.SetDefault("cluster.tolerance", 1e-4)
	v.SetDefault("cluster.inits", 1)
	v.SetDefault("cluster.palette", DefaultPalette)
	v.SetDefault("cluster.drop_incomplete", false)
	v.SetDefault("dashboard.min_year", 2010)
	v.SetDefault("dashboard.embed_url", "https://public.tableau.com/views/WaterUsageUSA/Dashboard1?:language=en-US&:embed=true&publish=yes")
	v.SetDefault("dashboard.images", []map[string]any{
		{"path": "images/Water_Usage_by_Cat.png", "width": 750},
		{"path": "images/moderate_drought.png", "width": 750},
		{"path": "images/tmean_c.png", "width": 750},
		{"path": "images/median_household_income.png", "width": 750},
	})
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.cors_origins", []string{"*"})
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

// Validate checks the settings a command mode depends on and reports every
// problem at once. Modes: "data", "cluster", "timeseries", "serve". Every
// mode checks the data source.
func (c *Config) Validate(mode string) error {
	errs := c.dataErrors()

	switch mode {
	case "data":
	case "cluster":
		errs = append(errs, c.clusterErrors()...)
	case "timeseries":
		if c.Data.MonthlyPath == "" {
			errs = append(errs, "data.monthly_path is required")
		}
		if c.Data.AnnualPath == "" {
			errs = append(errs, "data.annual_path is required")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
			errs = append(errs, "server.rate_burst must be >= 1 when rate_limit is set")
		}
		errs = append(errs, c.clusterErrors()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) dataErrors() []string {
	var errs []string
	switch strings.ToLower(c.Data.Source) {
	case "", "csv", "xlsx":
		if c.Data.Path == "" {
			errs = append(errs, "data.path is required")
		}
	case "sqlite":
		if c.Data.Path == "" && c.Data.DatabaseURL == "" {
			errs = append(errs, "data.path or data.database_url is required for sqlite")
		}
	case "postgres":
		if c.Data.DatabaseURL == "" {
			errs = append(errs, "data.database_url is required for postgres")
		}
	default:
		errs = append(errs, "data.source must be one of csv, xlsx, sqlite, postgres")
	}
	return errs
}

func (c *Config) clusterErrors() []string {
	var errs []string
	if c.Cluster.K < 1 {
		errs = append(errs, "cluster.k must be > 0")
	}
	if len(c.Cluster.Palette) < c.Cluster.K {
		errs = append(errs, "cluster.palette needs at least cluster.k colors")
	}
	if c.Cluster.MaxIterations < 1 {
		errs = append(errs, "cluster.max_iterations must be > 0")
	}
	if c.Cluster.Tolerance < 0 {
		errs = append(errs, "cluster.tolerance must be >= 0")
	}
	if c.Cluster.Inits < 0 {
		errs = append(errs, "cluster.inits must be >= 0")
	}
	return errs
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
