package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Mode selects the dispatch strategy for chunk processing.
type Mode string

const (
	// ModeSequential processes rows one at a time.
	ModeSequential Mode = "sequential"
	// ModeThread fans rows of one chunk across a goroutine pool that
	// shares a single store handle.
	ModeThread Mode = "thread"
	// ModeProcess fans whole chunks across workers that each own a
	// separate store handle.
	ModeProcess Mode = "process"
)

// Collections names the auxiliary store collections. The record
// target collections themselves come from the provider contracts.
type Collections struct {
	Legs           string `yaml:"legs" json:"legs"`
	InvalidRecords string `yaml:"invalid_records" json:"invalid_records"`
	History        string `yaml:"history" json:"history"`
}

// Config is the explicit run configuration handed to the dispatcher
// and persistence adapter at construction. There is no ambient global
// settings state.
type Config struct {
	ChunkSize int  `yaml:"chunk_size" json:"chunk_size"`
	Mode      Mode `yaml:"mode" json:"mode"`
	Width     int  `yaml:"width" json:"width"`
	Verbose   bool `yaml:"verbose" json:"verbose"`

	MongoURI string `yaml:"mongo_uri" json:"mongo_uri"`
	Database string `yaml:"database" json:"database"`

	Collections Collections `yaml:"collections" json:"collections"`

	LogFormat string `yaml:"log_format" json:"log_format"` // "text" or "json"
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		ChunkSize: 500,
		Mode:      ModeSequential,
		Width:     4,
		MongoURI:  "mongodb://localhost:27017",
		Database:  "transnet",
		Collections: Collections{
			Legs:           "legs",
			InvalidRecords: "invalidRecords",
			History:        "history",
		},
		LogFormat: "text",
	}
}

// Load parses YAML bytes into a Config, applying defaults for any
// omitted values.
func Load(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg = applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the run parameters the core depends on.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", c.Width)
	}
	switch c.Mode {
	case ModeSequential, ModeThread, ModeProcess:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}

func applyDefaults(cfg Config) Config {
	def := Default()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.Mode == "" {
		cfg.Mode = def.Mode
	}
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = def.MongoURI
	}
	if cfg.Database == "" {
		cfg.Database = def.Database
	}
	if cfg.Collections.Legs == "" {
		cfg.Collections.Legs = def.Collections.Legs
	}
	if cfg.Collections.InvalidRecords == "" {
		cfg.Collections.InvalidRecords = def.Collections.InvalidRecords
	}
	if cfg.Collections.History == "" {
		cfg.Collections.History = def.Collections.History
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = def.LogFormat
	}
	return cfg
}
