package config

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/NeoSilver997/silver-media-library/internal/filesystem"
	"github.com/NeoSilver997/silver-media-library/internal/filter"
)

// EnvPrefix is prepended to every environment override, e.g. SILVERSCAN_WORKERS
const EnvPrefix = "SILVERSCAN"

// ReportFormats lists the accepted report_format values; empty means console only
var ReportFormats = []string{"", "json", "text", "md"}

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the scanner configuration
type Config struct {
	// Pipeline settings
	Workers   int  `mapstructure:"workers"`    // number of hash workers
	QueueSize int  `mapstructure:"queue_size"` // bounded channel capacity, 0 = workers*2
	QuickPass bool `mapstructure:"quick_pass"` // prune by size and quick hash before full hashing

	// Traversal settings
	FollowSymlinks    bool     `mapstructure:"follow_symlinks"`
	MaxDepth          int      `mapstructure:"max_depth"`      // -1 = unbounded
	Exclude           []string `mapstructure:"exclude"`        // literal substrings
	ExcludeRegex      []string `mapstructure:"exclude_regex"`  // regular expressions
	ExcludeGlob       []string `mapstructure:"exclude_glob"`   // doublestar globs
	HiddenFolders     []string `mapstructure:"hidden_folders"` // folder names skipped anywhere in a path
	RulesFile         string   `mapstructure:"rules_file"`     // YAML exclude rules
	DirProgressEvery  uint64   `mapstructure:"dir_progress_every"`
	FileProgressEvery uint64   `mapstructure:"file_progress_every"`

	// Hash settings
	HashAlgorithm      string `mapstructure:"hash_algorithm"`
	QuickAlgorithm     string `mapstructure:"quick_algorithm"`
	QuickSampleSize    string `mapstructure:"quick_sample_size"`
	LargeFileThreshold string `mapstructure:"large_file_threshold"`
	StreamChunkSize    string `mapstructure:"stream_chunk_size"`
	MinSize            string `mapstructure:"min_size"` // smaller files are never duplicate candidates

	// Report settings
	ReportFormat  string `mapstructure:"report_format"`  // json, text, md; empty for console only
	OutputFile    string `mapstructure:"output_file"`    // report path
	InventoryFile string `mapstructure:"inventory_file"` // gzip JSON-lines file listing
	MetricsFile   string `mapstructure:"metrics_file"`   // prometheus textfile
}

// LoadConfig loads configuration from defaults, an optional config file
// and environment variables, in increasing priority
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("queue_size", 0)
	v.SetDefault("quick_pass", true)
	v.SetDefault("follow_symlinks", false)
	v.SetDefault("max_depth", filesystem.Unbounded)
	v.SetDefault("exclude", []string{})
	v.SetDefault("exclude_regex", []string{})
	v.SetDefault("exclude_glob", []string{})
	v.SetDefault("hidden_folders", []string{".git", "node_modules", ".svn", ".hg", "@eaDir", "$RECYCLE.BIN"})
	v.SetDefault("rules_file", "")
	v.SetDefault("dir_progress_every", 100)
	v.SetDefault("file_progress_every", 1000)
	v.SetDefault("hash_algorithm", string(filesystem.SHA256))
	v.SetDefault("quick_algorithm", string(filesystem.XXH64))
	v.SetDefault("quick_sample_size", "8KiB")
	v.SetDefault("large_file_threshold", "2GiB")
	v.SetDefault("stream_chunk_size", "1MiB")
	v.SetDefault("min_size", "1B")
	v.SetDefault("report_format", "")
	v.SetDefault("output_file", "")
	v.SetDefault("inventory_file", "")
	v.SetDefault("metrics_file", "")
}

// Validate checks values that would otherwise fail deep inside a scan
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("%w: queue_size must not be negative, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.MaxDepth < filesystem.Unbounded {
		return fmt.Errorf("%w: max_depth must be -1 or greater, got %d", ErrInvalidConfig, c.MaxDepth)
	}

	if _, err := c.HashOptions(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.MinSizeBytes(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	format := strings.ToLower(c.ReportFormat)
	valid := false
	for _, f := range ReportFormats {
		if f == format {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: unknown report_format %q (valid: json, text, md)", ErrInvalidConfig, c.ReportFormat)
	}

	return nil
}

// Queue returns the effective channel capacity
func (c *Config) Queue() int {
	if c.QueueSize > 0 {
		return c.QueueSize
	}
	return c.Workers * 2
}

// ScanOptions returns the traversal options
func (c *Config) ScanOptions() filesystem.ScanOptions {
	return filesystem.ScanOptions{
		FollowSymlinks:    c.FollowSymlinks,
		MaxDepth:          c.MaxDepth,
		DirProgressEvery:  c.DirProgressEvery,
		FileProgressEvery: c.FileProgressEvery,
	}
}

// HashOptions parses the hash settings
func (c *Config) HashOptions() (filesystem.HashOptions, error) {
	var opts filesystem.HashOptions

	full, err := filesystem.ParseAlgorithm(c.HashAlgorithm)
	if err != nil {
		return opts, err
	}
	if !full.Cryptographic() {
		return opts, fmt.Errorf("%w: %s is not suitable as hash_algorithm", filesystem.ErrUnsupportedAlgorithm, full)
	}
	quick, err := filesystem.ParseAlgorithm(c.QuickAlgorithm)
	if err != nil {
		return opts, err
	}

	sample, err := ParseSize(c.QuickSampleSize)
	if err != nil {
		return opts, fmt.Errorf("quick_sample_size: %w", err)
	}
	threshold, err := ParseSize(c.LargeFileThreshold)
	if err != nil {
		return opts, fmt.Errorf("large_file_threshold: %w", err)
	}
	chunk, err := ParseSize(c.StreamChunkSize)
	if err != nil {
		return opts, fmt.Errorf("stream_chunk_size: %w", err)
	}
	if sample == 0 || chunk == 0 {
		return opts, errors.New("quick_sample_size and stream_chunk_size must be positive")
	}
	if sample > math.MaxInt32 || chunk > math.MaxInt32 || threshold > math.MaxInt64 {
		return opts, errors.New("hash sizes out of range")
	}

	return filesystem.HashOptions{
		Full:               full,
		Quick:              quick,
		SampleSize:         int64(sample),
		LargeFileThreshold: int64(threshold),
		ChunkSize:          int(chunk),
	}, nil
}

// MinSizeBytes parses min_size
func (c *Config) MinSizeBytes() (uint64, error) {
	n, err := ParseSize(c.MinSize)
	if err != nil {
		return 0, fmt.Errorf("min_size: %w", err)
	}
	return n, nil
}

// FilterConfig merges the inline exclude settings with the rules file
func (c *Config) FilterConfig() (filter.Config, error) {
	fc := filter.Config{
		Literals:      c.Exclude,
		Regexes:       c.ExcludeRegex,
		Globs:         c.ExcludeGlob,
		HiddenFolders: c.HiddenFolders,
	}
	if c.RulesFile == "" {
		return fc, nil
	}

	rules, err := filter.LoadRules(c.RulesFile)
	if err != nil {
		return fc, err
	}
	return rules.Apply(fc), nil
}

// BuildFilter compiles the effective path filter
func (c *Config) BuildFilter() (*filter.Filter, error) {
	fc, err := c.FilterConfig()
	if err != nil {
		return nil, err
	}
	return filter.New(fc)
}

// ParseSize parses a human size such as "650K", "8KiB" or "2GiB".
// An empty string is zero.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return n, nil
}
