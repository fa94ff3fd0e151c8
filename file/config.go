package file

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config mirrors VortexOpenOptions/VortexWriteOptions' tunable knobs in
// a form suitable for a deployment's config file (spec.md §6,
// "Configuration knobs"), e.g.:
//
//	initial_read_bytes: 1048576
//	segment_cache_bytes: 268435456
//	io_concurrency: 16
//	io_bytes_per_second: 0
//	chunk_rows: 65536
type Config struct {
	InitialReadBytes  int   `yaml:"initial_read_bytes"`
	SegmentCacheBytes int64 `yaml:"segment_cache_bytes"`
	IOConcurrency     int   `yaml:"io_concurrency"`
	IOBytesPerSecond  int   `yaml:"io_bytes_per_second"`
	ChunkRows         int   `yaml:"chunk_rows"`
}

// LoadConfig reads and parses a YAML config file at path. Fields left
// unset (zero) fall back to this package's defaults when the Config is
// applied via OpenOptions/WriteOptions.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("file: reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("file: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// OpenOptions translates c into VortexOpenOptions, leaving Registry,
// Logger, and Metrics for the caller to set afterward.
func (c Config) OpenOptions() VortexOpenOptions {
	return VortexOpenOptions{
		InitialReadBytes:  c.InitialReadBytes,
		SegmentCacheBytes: c.SegmentCacheBytes,
		IOConcurrency:     c.IOConcurrency,
		IOBytesPerSecond:  c.IOBytesPerSecond,
	}
}

// WriteOptions translates c into VortexWriteOptions, leaving Logger and
// Metrics for the caller to set afterward.
func (c Config) WriteOptions() VortexWriteOptions {
	return VortexWriteOptions{ChunkRows: c.ChunkRows}
}
