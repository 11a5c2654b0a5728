package launchdash

import (
	"errors"
	"fmt"
	"net"

	"github.com/spf13/viper"
)

// Storage backends selectable with the "backend" config key.
const (
	BackendMemory = "memory" // Queries answered by dataset.Store.
	BackendSQLite = "sqlite" // Queries answered by db.Repository.
)

// Config holds the dashboard settings read from config.yaml in the config directory.
type Config struct {
	viper        *viper.Viper
	ConfigDir    string `mapstructure:"config_dir"`    // Current config dir
	DataFile     string `mapstructure:"data_file"`     // Launch records CSV, read once at startup
	Address      string `mapstructure:"address"`       // Listen address
	Port         string `mapstructure:"port"`          // Listen port
	Backend      string `mapstructure:"backend"`       // BackendMemory or BackendSQLite
	StorePath    string `mapstructure:"store_path"`    // sqlite database name, ":memory:" by default
	PrettyOutput bool   `mapstructure:"pretty_output"` // Indent HTML, JSON and SVG responses
	Compression  bool   `mapstructure:"compression"`   // Negotiate br/gzip response encoding
	ChartWidth   int    `mapstructure:"chart_width"`   // Rendered chart width in pixels
	ChartHeight  int    `mapstructure:"chart_height"`  // Rendered chart height in pixels
}

// DefaultConfig returns the settings used when no config file overrides them.
func DefaultConfig() *Config {
	return &Config{
		DataFile:    "spacex_launch_dash.csv",
		Address:     "127.0.0.1",
		Port:        "8050",
		Backend:     BackendMemory,
		StorePath:   ":memory:",
		Compression: true,
		ChartWidth:  900,
		ChartHeight: 450,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("data_file", d.DataFile)
	v.SetDefault("address", d.Address)
	v.SetDefault("port", d.Port)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("store_path", d.StorePath)
	v.SetDefault("pretty_output", d.PrettyOutput)
	v.SetDefault("compression", d.Compression)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)
}

// ListenAddr returns the host:port the dashboard serves on.
func (cfg *Config) ListenAddr() string {
	return net.JoinHostPort(cfg.Address, cfg.Port)
}

// Validate checks the settings that cannot be repaired with a default.
func (cfg *Config) Validate() error {
	switch cfg.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("backend should be either: %s, %s", BackendMemory, BackendSQLite)
	}
	if cfg.DataFile == "" {
		return errors.New("data_file is required")
	}
	if cfg.ChartWidth <= 0 || cfg.ChartHeight <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", cfg.ChartWidth, cfg.ChartHeight)
	}
	return nil
}

// SetDataFile points the dashboard at another CSV file and saves the configuration.
// The new file is only read on the next start.
func (cfg *Config) SetDataFile(path string) error {
	if cfg.viper == nil {
		return errors.New("config is not backed by a config file")
	}
	cfg.DataFile = path
	cfg.viper.Set("data_file", path)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}
