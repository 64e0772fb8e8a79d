package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/NeoSilver997/silver-media-library/internal/config"
	"github.com/NeoSilver997/silver-media-library/internal/core"
)

var (
	verbose    bool
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "silverscan",
		Short: "Silverscan - duplicate finder for media libraries",
		Long: `Walk one or more directory trees, fingerprint every file by content
and report groups of byte-identical duplicates with the space they waste.`,
		Version:      core.Version,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (yaml, toml or json)")

	// Add commands
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(hashCmd())
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, rootCmd); err != nil {
		stop()
		os.Exit(1)
	}
}

// newLogger builds a development logger under --verbose and an
// error-only JSON logger otherwise
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	// Silent logger - only errors
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
		Encoding:         "json",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
	return cfg.Build()
}

// setup initializes the logger and loads configuration
func setup() (*zap.Logger, *config.Config, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		return nil, nil, err
	}
	return logger, cfg, nil
}

// printBanner prints the startup banner
func printBanner(roots []string, mode string) {
	title := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)

	fmt.Fprintln(os.Stderr)
	title.Fprintf(os.Stderr, "silverscan v%s\n", core.Version)
	for _, root := range roots {
		gray.Fprint(os.Stderr, "  Root:  ")
		fmt.Fprintln(os.Stderr, root)
	}
	if mode != "" {
		gray.Fprint(os.Stderr, "  Mode:  ")
		fmt.Fprintln(os.Stderr, mode)
	}
	fmt.Fprintln(os.Stderr)
}

// versionCmd prints the version
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "silverscan %s\n", core.Version)
		},
	}
}
