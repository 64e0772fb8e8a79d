package main

import (
	"github.com/spf13/cobra"

	"github.com/NeoSilver997/silver-media-library/internal/config"
)

// walkFlags are the traversal flags shared by scan and index
type walkFlags struct {
	followSymlinks bool
	maxDepth       int
	exclude        []string
	excludeRegex   []string
	excludeGlob    []string
	rulesFile      string
	inventory      string
}

func (f *walkFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.followSymlinks, "follow-symlinks", false, "Follow symbolic links")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", -1, "Maximum directory depth below each root (-1 = unbounded)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Skip paths containing these substrings (comma-separated)")
	cmd.Flags().StringSliceVar(&f.excludeRegex, "exclude-regex", nil, "Skip paths matching these regular expressions")
	cmd.Flags().StringSliceVar(&f.excludeGlob, "exclude-glob", nil, "Skip paths matching these globs (** supported)")
	cmd.Flags().StringVar(&f.rulesFile, "rules", "", "YAML file with exclude rules")
	cmd.Flags().StringVar(&f.inventory, "inventory", "", "Write a gzip JSON-lines listing of every file")
}

// apply overrides cfg with the flags set on the command line
func (f *walkFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("follow-symlinks") {
		cfg.FollowSymlinks = f.followSymlinks
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = f.maxDepth
	}
	if len(f.exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, f.exclude...)
	}
	if len(f.excludeRegex) > 0 {
		cfg.ExcludeRegex = append(cfg.ExcludeRegex, f.excludeRegex...)
	}
	if len(f.excludeGlob) > 0 {
		cfg.ExcludeGlob = append(cfg.ExcludeGlob, f.excludeGlob...)
	}
	if f.rulesFile != "" {
		cfg.RulesFile = f.rulesFile
	}
	if f.inventory != "" {
		cfg.InventoryFile = f.inventory
	}
}

// scanFlags are the hashing and reporting flags of scan
type scanFlags struct {
	walkFlags

	workers        int
	queueSize      int
	quickPass      bool
	algorithm      string
	quickAlgorithm string
	minSize        string
	reportFormat   string
	outputFile     string
	metricsFile    string
	showWarnings   bool
}

func (f *scanFlags) bind(cmd *cobra.Command) {
	f.walkFlags.bind(cmd)
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Number of hashing workers (default: CPU cores)")
	cmd.Flags().IntVar(&f.queueSize, "queue-size", 0, "Capacity of the work queues (default: workers * 2)")
	cmd.Flags().BoolVar(&f.quickPass, "quick-pass", true, "Prune candidates by size and quick hash before full hashing")
	cmd.Flags().StringVar(&f.algorithm, "algorithm", "", "Full hash algorithm: sha256, sha512, blake2b, blake3")
	cmd.Flags().StringVar(&f.quickAlgorithm, "quick-algorithm", "", "Quick hash algorithm: xxh64, sha256, blake3")
	cmd.Flags().StringVar(&f.minSize, "min-size", "", "Ignore files smaller than this (e.g. 1B, 100KiB)")
	cmd.Flags().StringVarP(&f.reportFormat, "report", "r", "", "Report format: json, text, md (default: console output)")
	cmd.Flags().StringVarP(&f.outputFile, "output", "o", "", "Output file path")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write prometheus metrics in textfile format")
	cmd.Flags().BoolVar(&f.showWarnings, "warnings", false, "Print every warning while scanning")
}

func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f.walkFlags.apply(cmd, cfg)
	flags := cmd.Flags()
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.queueSize > 0 {
		cfg.QueueSize = f.queueSize
	}
	if flags.Changed("quick-pass") {
		cfg.QuickPass = f.quickPass
	}
	if f.algorithm != "" {
		cfg.HashAlgorithm = f.algorithm
	}
	if f.quickAlgorithm != "" {
		cfg.QuickAlgorithm = f.quickAlgorithm
	}
	if f.minSize != "" {
		cfg.MinSize = f.minSize
	}
	if f.reportFormat != "" {
		cfg.ReportFormat = f.reportFormat
	}
	if f.outputFile != "" {
		cfg.OutputFile = f.outputFile
	}
	if f.metricsFile != "" {
		cfg.MetricsFile = f.metricsFile
	}
}
