// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Grammar    GrammarConfig    `mapstructure:"grammar"`
	Generation GenerationConfig `mapstructure:"generation"`
	Serializer SerializerConfig `mapstructure:"serializer"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// GrammarConfig points at the rule and entity files. Either direct file paths
// or a registry file plus bundle id; the bundle wins when both are set.
type GrammarConfig struct {
	GrammarFile   string `mapstructure:"grammar_file"`
	KnowledgeFile string `mapstructure:"knowledge_file"`
	RegistryFile  string `mapstructure:"registry_file"`
	Bundle        string `mapstructure:"bundle"`
	// WeightedEntities switches knowledge-base sampling from uniform to
	// weight-proportional.
	WeightedEntities bool `mapstructure:"weighted_entities"`
}

// GenerationConfig holds the batch generation request defaults.
type GenerationConfig struct {
	StartCategory string `mapstructure:"start_category"`
	Count         int    `mapstructure:"count"`
	Seed          int64  `mapstructure:"seed"`
	MaxDepth      int    `mapstructure:"max_depth"`
	MaxRetries    int    `mapstructure:"max_retries"`
	Unique        bool   `mapstructure:"unique"`
	Policy        string `mapstructure:"policy"` // random | weighted | exhaustive
	Workers       int    `mapstructure:"workers"`
	// TimeoutMs bounds one batch run; 0 disables the deadline.
	TimeoutMs int `mapstructure:"timeout_ms"`
}

// SerializerConfig controls surface-string normalization.
type SerializerConfig struct {
	Lowercase           bool   `mapstructure:"lowercase"`
	TrailingPunctuation string `mapstructure:"trailing_punctuation"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ListenAddress string `mapstructure:"listen_address"`
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
