package report

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"

	"github.com/NeoSilver997/silver-media-library/internal/config"
	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// consoleGroupLimit caps the groups listed on the console
const consoleGroupLimit = 25

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		// Milliseconds
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		// Seconds
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		// Minutes and seconds
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	// Hours, minutes and seconds
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// Generator generates scan reports in various formats
type Generator struct {
	config *config.Config
	logger *zap.Logger
	out    io.Writer
}

// NewGenerator creates a new report generator writing console output to stdout
func NewGenerator(cfg *config.Config, logger *zap.Logger) (*Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		config: cfg,
		logger: logger,
		out:    os.Stdout,
	}, nil
}

// SetOutput redirects console output
func (g *Generator) SetOutput(w io.Writer) {
	g.out = w
}

// Generate writes a report based on scan results and returns its absolute
// path, or prints to the console when no format is configured
func (g *Generator) Generate(results *models.ScanResults) (string, error) {
	format := strings.ToLower(g.config.ReportFormat)
	outputFile := g.config.OutputFile

	// If no format specified, print to console
	if format == "" {
		g.printConsole(results)
		return "", nil
	}

	// Generate default filename if not specified
	if outputFile == "" {
		timestamp := time.Now().Format("20060102-150405")
		switch format {
		case "json":
			outputFile = fmt.Sprintf("SILVERSCAN-REPORT-%s.json", timestamp)
		case "txt", "text":
			outputFile = fmt.Sprintf("SILVERSCAN-REPORT-%s.txt", timestamp)
		case "md", "markdown":
			outputFile = fmt.Sprintf("SILVERSCAN-REPORT-%s.md", timestamp)
		default:
			return "", fmt.Errorf("unknown report format: %s", format)
		}
	}

	g.logger.Info("Generating report",
		zap.String("format", format),
		zap.String("output", outputFile))

	var err error
	switch format {
	case "json":
		err = g.generateJSON(results, outputFile)
	case "txt", "text":
		err = g.generateText(results, outputFile)
	case "md", "markdown":
		err = g.generateMarkdown(results, outputFile)
	default:
		return "", fmt.Errorf("unknown report format: %s", format)
	}

	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	// Get absolute path
	absPath, _ := filepath.Abs(outputFile)
	results.ReportPath = absPath
	return absPath, nil
}

// byWasted returns the groups ordered by wasted space, largest first.
// Ties keep digest order.
func byWasted(groups []models.DuplicateGroup) []models.DuplicateGroup {
	sorted := slices.Clone(groups)
	slices.SortStableFunc(sorted, func(a, b models.DuplicateGroup) int {
		return cmp.Compare(b.WastedSpace, a.WastedSpace)
	})
	return sorted
}

// groupTable builds the duplicate table shared by console and markdown output
func groupTable(groups []models.DuplicateGroup, limit int) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Copies", "Size", "Wasted", "Digest", "Files"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	for i, grp := range groups {
		if limit > 0 && i >= limit {
			break
		}
		paths := make([]string, len(grp.Members))
		for j, m := range grp.Members {
			paths[j] = m.Path
		}
		digest := grp.Digest.Hex()
		if len(digest) > 12 {
			digest = digest[:12]
		}
		t.AppendRow(table.Row{
			i + 1,
			grp.Count(),
			humanize.IBytes(grp.FileSize),
			humanize.IBytes(grp.WastedSpace),
			digest,
			strings.Join(paths, "\n"),
		})
	}
	return t
}

// printConsole prints results with colors and a duplicate table
func (g *Generator) printConsole(results *models.ScanResults) {
	w := g.out
	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	warn := color.New(color.FgYellow)
	good := color.New(color.FgGreen)

	fmt.Fprintln(w)
	bold.Fprintf(w, "SCAN %s\n", strings.ToUpper(string(results.Status)))
	fmt.Fprintln(w)

	gray.Fprint(w, "  Roots:      ")
	fmt.Fprintln(w, strings.Join(results.Roots, ", "))
	gray.Fprint(w, "  Duration:   ")
	fmt.Fprintln(w, FormatDuration(results.Duration))
	gray.Fprint(w, "  Scanned:    ")
	fmt.Fprintf(w, "%s files in %s dirs (%s)\n",
		humanize.Comma(int64(results.ProcessedFiles)),
		humanize.Comma(int64(results.ProcessedDirs)),
		humanize.IBytes(results.TotalBytes))

	var media []string
	for _, class := range models.MediaClasses {
		if n := results.MediaCounts[class]; n > 0 {
			media = append(media, fmt.Sprintf("%s %s", humanize.Comma(int64(n)), class))
		}
	}
	if len(media) > 0 {
		gray.Fprint(w, "  Media:      ")
		fmt.Fprintln(w, strings.Join(media, ", "))
	}

	gray.Fprint(w, "  Hashed:     ")
	fmt.Fprintf(w, "%s quick, %s full (%s)\n",
		humanize.Comma(int64(results.QuickHashed)),
		humanize.Comma(int64(results.FullHashed)),
		humanize.IBytes(results.Stats.BytesHashed))

	if results.Warnings > 0 {
		warn.Fprintf(w, "  Warnings:   %s\n", humanize.Comma(int64(results.Warnings)))
	}
	for _, msg := range results.IntegrityErrors {
		warn.Fprintf(w, "  %s\n", msg)
	}
	fmt.Fprintln(w)

	if len(results.Groups) == 0 {
		good.Fprintln(w, "  No duplicates found")
		fmt.Fprintln(w)
		return
	}

	warn.Fprintf(w, "  %s duplicate groups, %s files, %s reclaimable\n\n",
		humanize.Comma(int64(len(results.Groups))),
		humanize.Comma(int64(results.DuplicateFiles)),
		humanize.IBytes(results.WastedSpace))

	t := groupTable(byWasted(results.Groups), consoleGroupLimit)
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(w)
	t.Render()

	if extra := len(results.Groups) - consoleGroupLimit; extra > 0 {
		gray.Fprintf(w, "  ... and %d more groups (use --format json for the full list)\n", extra)
	}
	fmt.Fprintln(w)
}
