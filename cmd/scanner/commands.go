package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NeoSilver997/silver-media-library/internal/config"
	"github.com/NeoSilver997/silver-media-library/internal/core"
	"github.com/NeoSilver997/silver-media-library/internal/filesystem"
	"github.com/NeoSilver997/silver-media-library/internal/progress"
	"github.com/NeoSilver997/silver-media-library/internal/report"
	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// scanCmd creates the scan command
func scanCmd() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan ROOT...",
		Short: "Find duplicate files below one or more roots",
		Long: `Recursively walk every root, hash candidate files and report groups of
byte-identical duplicates together with the space they waste.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			mode := "streaming"
			if cfg.QuickPass {
				mode = "quick pass"
			}
			printBanner(args, mode)

			// Progress goes to stderr, the log and the metrics registry
			metrics := progress.NewMetrics()
			scanner := core.NewScanner(cfg, logger)
			scanner.SetProgressSink(progress.Multi(
				progress.NewConsole(os.Stderr, flags.showWarnings),
				progress.NewLogSink(logger),
				metrics,
			))

			inventory, err := openInventory(cfg, scanner)
			if err != nil {
				return err
			}

			results, err := scanner.Scan(cmd.Context(), args)
			if inventory != nil {
				if cerr := inventory.Close(); cerr != nil {
					logger.Error("Failed to close inventory", zap.Error(cerr))
				}
			}
			if err != nil {
				logger.Error("Scan failed", zap.Error(err))
				return err
			}

			metrics.ObserveResults(results)
			if cfg.MetricsFile != "" {
				if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
					logger.Error("Failed to write metrics", zap.Error(err))
				}
			}

			generator, err := report.NewGenerator(cfg, logger)
			if err != nil {
				return err
			}
			path, err := generator.Generate(results)
			if err != nil {
				return err
			}

			gray := color.New(color.FgHiBlack)
			if path != "" {
				gray.Fprint(os.Stderr, "  Report:    ")
				fmt.Fprintln(os.Stderr, path)
			}
			if inventory != nil {
				gray.Fprint(os.Stderr, "  Inventory: ")
				fmt.Fprintf(os.Stderr, "%s (%s files)\n", cfg.InventoryFile, humanize.Comma(int64(inventory.Count())))
			}
			if results.Status == models.StatusCancelled {
				color.New(color.FgYellow).Fprintln(os.Stderr, "  Scan interrupted, results are partial")
			}
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}

// indexCmd creates the index command
func indexCmd() *cobra.Command {
	var flags walkFlags

	cmd := &cobra.Command{
		Use:   "index ROOT...",
		Short: "Walk roots and print file totals without hashing",
		Long: `Walk every root with the configured filters and print directory, file and
byte totals per media type. Use --inventory to keep the file listing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			flags.apply(cmd, cfg)

			scanner := core.NewScanner(cfg, logger)
			scanner.SetProgressSink(progress.Multi(
				progress.NewConsole(os.Stderr, false),
				progress.NewLogSink(logger),
			))

			inventory, err := openInventory(cfg, scanner)
			if err != nil {
				return err
			}

			results, err := scanner.Index(cmd.Context(), args)
			if inventory != nil {
				if cerr := inventory.Close(); cerr != nil {
					logger.Error("Failed to close inventory", zap.Error(cerr))
				}
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s dirs, %s files, %s (%s)\n",
				humanize.Comma(int64(results.ProcessedDirs)),
				humanize.Comma(int64(results.ProcessedFiles)),
				humanize.IBytes(results.TotalBytes),
				report.FormatDuration(results.Duration))
			for _, class := range models.MediaClasses {
				fmt.Fprintf(out, "  %-6s %s\n", class, humanize.Comma(int64(results.MediaCounts[class])))
			}
			if results.Warnings > 0 {
				color.New(color.FgYellow).Fprintf(out, "  %d warnings\n", results.Warnings)
			}
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}

// hashCmd creates the hash command
func hashCmd() *cobra.Command {
	var (
		quick     bool
		algorithm string
	)

	cmd := &cobra.Command{
		Use:   "hash FILE...",
		Short: "Print content digests of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			opts, err := cfg.HashOptions()
			if err != nil {
				return err
			}
			if algorithm != "" {
				a, err := filesystem.ParseAlgorithm(algorithm)
				if err != nil {
					return err
				}
				if quick {
					opts.Quick = a
				} else {
					opts.Full = a
				}
			}

			hasher, err := filesystem.NewHasher(afero.NewOsFs(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				var res models.HashResult
				if quick {
					res, err = hasher.QuickHash(path)
				} else {
					res, err = hasher.FullHash(path)
				}
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failed++
					continue
				}
				fmt.Fprintf(out, "%s  %s\n", res.Digest.Hex(), res.Path)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be hashed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&quick, "quick", false, "Print the head and tail quick hash instead of the full digest")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Hash algorithm (default from config)")
	return cmd
}

// openInventory attaches an inventory writer to the scanner when configured
func openInventory(cfg *config.Config, scanner *core.Scanner) (*report.InventoryWriter, error) {
	if cfg.InventoryFile == "" {
		return nil, nil
	}
	w, err := report.NewInventoryWriter(cfg.InventoryFile)
	if err != nil {
		return nil, err
	}
	scanner.SetFileObserver(w.Write)
	return w, nil
}
