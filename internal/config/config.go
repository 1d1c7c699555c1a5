// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   defaults -> optional file -> env on top of them.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Per-run tuning parameters are
// NOT part of this struct; they arrive with each build request.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataPath points at the CSV dataset loaded once at startup.
	DataPath string `koanf:"data_path"`

	// TargetColumn names the label column in the dataset.
	TargetColumn string `koanf:"target_column"`

	// CategoricalColumns are one-hot expanded during loading.
	CategoricalColumns []string `koanf:"categorical_columns"`

	// MaxGridPoints caps the Cartesian product size accepted per run.
	MaxGridPoints int `koanf:"max_grid_points"`

	// HistorySize bounds the in-memory run report store.
	HistorySize int `koanf:"history_size"`
}

// New creates a Config populated with defaults. The categorical columns
// default to the heart-disease dataset schema.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		Addr:         ":9080",
		DataPath:     "dataset.csv",
		TargetColumn: "target",
		CategoricalColumns: []string{
			"sex", "cp", "fbs", "restecg", "exang", "slope", "ca", "thal",
		},
		MaxGridPoints: 256,
		HistorySize:   20,
	}
}
