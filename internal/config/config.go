// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package config

import "time"

// Config holds every section of the service configuration.
type Config struct {
	Model   ModelConfig   `koanf:"model"`
	Data    DataConfig    `koanf:"data"`
	Storage StorageConfig `koanf:"storage"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Cache   CacheConfig   `koanf:"cache"`
}

// ModelConfig holds the SAR model parameters.
type ModelConfig struct {
	SimilarityType string          `koanf:"similarity_type" validate:"similarity_type"`
	Threshold      int             `koanf:"threshold" validate:"gte=1"`
	TimeDecay      bool            `koanf:"time_decay"`
	HalfLifeDays   float64         `koanf:"half_life_days" validate:"gt=0"`
	TimeNow        string          `koanf:"time_now"`
	Normalize      bool            `koanf:"normalize"`
	RatingWeight   float64         `koanf:"rating_weight" validate:"gte=0,lte=1"`
	Features       []FeatureConfig `koanf:"features" validate:"dive"`

	// ParallelRows is the row count from which scoring runs in parallel.
	ParallelRows int `koanf:"parallel_rows" validate:"gte=1"`
}

// FeatureConfig is one column of the custom similarity blend.
type FeatureConfig struct {
	Column     string  `koanf:"column" validate:"required"`
	Similarity string  `koanf:"similarity" validate:"feature_similarity"`
	Weight     float64 `koanf:"weight" validate:"gte=0"`

	// MaxDiff is the distance at which numeric similarity reaches 0.
	MaxDiff float64 `koanf:"max_diff" validate:"gte=0"`
}

// DataConfig describes where interactions and item features are read from.
type DataConfig struct {
	// DuckDBPath is the database file. Empty opens an in-memory database.
	DuckDBPath string `koanf:"duckdb_path"`

	// Interactions is a table name or a .csv/.parquet file path.
	Interactions string `koanf:"interactions" validate:"required"`

	// Features is a table name or file path. Required for custom similarity.
	Features string `koanf:"features"`

	UserColumn      string `koanf:"user_column" validate:"required"`
	ItemColumn      string `koanf:"item_column" validate:"required"`
	RatingColumn    string `koanf:"rating_column"`
	TimestampColumn string `koanf:"timestamp_column"`

	// FeatureItemColumn is the item id column of the feature table.
	FeatureItemColumn string `koanf:"feature_item_column" validate:"required"`

	// RefreshInterval reloads the tables and fits a new model this often.
	// 0 fits once at startup.
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"gte=0"`
}

// StorageConfig selects where feature similarity snapshots are kept.
type StorageConfig struct {
	Backend string `koanf:"backend" validate:"oneof=file badger none"`
	Path    string `koanf:"path"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP. 0 disables it.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// MaxBatchUsers caps the user list of a batch recommendation request.
	MaxBatchUsers int `koanf:"max_batch_users" validate:"gte=1"`

	// MaxK caps k on every top-k endpoint.
	MaxK int `koanf:"max_k" validate:"gte=1"`
}

// LoggingConfig holds the logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig holds the recommendation response cache settings.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries" validate:"gte=0"`
}

func defaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			SimilarityType: "jaccard",
			Threshold:      1,
			HalfLifeDays:   30,
			ParallelRows:   64,
		},
		Data: DataConfig{
			UserColumn:        "userID",
			ItemColumn:        "itemID",
			RatingColumn:      "rating",
			TimestampColumn:   "timestamp",
			FeatureItemColumn: "itemID",
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    "/data/sar/similarity",
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			ShutdownTimeout:   30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			MaxBatchUsers:     1000,
			MaxK:              1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}
