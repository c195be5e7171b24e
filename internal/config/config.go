package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete gateway configuration.
type Config struct {
	Workspace  WorkspaceConfig  `yaml:"workspace" envconfig:"WORKSPACE"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
}

// WorkspaceConfig contains the on-disk layout of the processing workspace.
type WorkspaceConfig struct {
	Root         string `yaml:"root" envconfig:"ROOT" validate:"required"`
	IncomingDir  string `yaml:"incoming_dir" envconfig:"INCOMING_DIR"`
	StagingDir   string `yaml:"staging_dir" envconfig:"STAGING_DIR"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR"`
	ExportDir    string `yaml:"export_dir" envconfig:"EXPORT_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// SecurityConfig contains inspection policy knobs. Defaults are part of the
// external contract; changing them changes which uploads are admitted.
type SecurityConfig struct {
	MaxUploadSize      int64   `yaml:"max_upload_size" envconfig:"MAX_UPLOAD_SIZE" validate:"gt=0"`
	HeaderPrefixSize   int     `yaml:"header_prefix_size" envconfig:"HEADER_PREFIX_SIZE" validate:"gt=0"`
	ScanChunkSize      int     `yaml:"scan_chunk_size" envconfig:"SCAN_CHUNK_SIZE" validate:"gt=0"`
	HeuristicPrefix    int     `yaml:"heuristic_prefix" envconfig:"HEURISTIC_PREFIX" validate:"gt=0"`
	HeuristicThreshold float64 `yaml:"heuristic_threshold" envconfig:"HEURISTIC_THRESHOLD" validate:"gt=0,lte=1"`
}

// ProcessingConfig contains transformation and execution settings.
type ProcessingConfig struct {
	TaxRate float64 `yaml:"tax_rate" envconfig:"TAX_RATE" validate:"gte=0,lt=1"`
	// Workers sizes the parallel strategy pool.
	Workers int `yaml:"workers" envconfig:"WORKERS" validate:"gt=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Default returns the built-in configuration. The security and processing
// values are the contractual defaults from constants.go.
func Default() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Root:         "data",
			IncomingDir:  DefaultIncomingDir,
			StagingDir:   DefaultStagingDir,
			ProcessedDir: DefaultProcessedDir,
			ExportDir:    DefaultExportDir,
			LogsDir:      DefaultLogsDir,
		},
		Security: SecurityConfig{
			MaxUploadSize:      DefaultMaxUploadSize,
			HeaderPrefixSize:   DefaultHeaderPrefixSize,
			ScanChunkSize:      DefaultScanChunkSize,
			HeuristicPrefix:    DefaultHeuristicPrefix,
			HeuristicThreshold: DefaultHeuristicThreshold,
		},
		Processing: ProcessingConfig{
			TaxRate: DefaultTaxRate,
			Workers: runtime.NumCPU(),
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/gateway.log",
		},
	}
}

// Load builds the configuration in three layers: built-in defaults, then an
// optional YAML file, then environment variables (prefix INGEST). Later
// layers win. The merged result is validated before use.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := overlayFromFile(cfg, configFile); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := envconfig.Process("INGEST", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// overlayFromFile unmarshals a YAML file over cfg. Only keys present in the
// document replace the defaults already in place.
func overlayFromFile(cfg *Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid YAML in %s: %w", filePath, err)
	}

	return nil
}
