package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// generateText generates a text report
func (g *Generator) generateText(results *models.ScanResults, outputFile string) error {
	var sb strings.Builder

	// Header
	sb.WriteString("=" + strings.Repeat("=", 78) + "\n")
	sb.WriteString(fmt.Sprintf("  SILVERSCAN DUPLICATE REPORT v%s\n", results.Version))
	sb.WriteString("=" + strings.Repeat("=", 78) + "\n\n")

	// Summary
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	sb.WriteString(fmt.Sprintf("Session:          %s\n", results.SessionID))
	sb.WriteString(fmt.Sprintf("Roots:            %s\n", strings.Join(results.Roots, ", ")))
	sb.WriteString(fmt.Sprintf("Status:           %s\n", results.Status))
	sb.WriteString(fmt.Sprintf("Start Time:       %s\n", results.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("End Time:         %s\n", results.EndTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", FormatDuration(results.Duration)))
	sb.WriteString(fmt.Sprintf("Directories:      %d\n", results.ProcessedDirs))
	sb.WriteString(fmt.Sprintf("Files:            %d\n", results.ProcessedFiles))
	sb.WriteString(fmt.Sprintf("Total Size:       %s\n", humanize.IBytes(results.TotalBytes)))
	sb.WriteString(fmt.Sprintf("Warnings:         %d\n", results.Warnings))
	sb.WriteString(fmt.Sprintf("Hash Failures:    %d\n", results.HashFailures))
	sb.WriteString(fmt.Sprintf("DUPLICATE GROUPS: %d\n", len(results.Groups)))
	sb.WriteString(fmt.Sprintf("WASTED SPACE:     %s (%d bytes)\n", humanize.IBytes(results.WastedSpace), results.WastedSpace))
	sb.WriteString("\n")

	// Media breakdown
	sb.WriteString("FILES BY MEDIA TYPE\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	for _, class := range models.MediaClasses {
		sb.WriteString(fmt.Sprintf("  %-10s: %d\n", class, results.MediaCounts[class]))
	}
	sb.WriteString("\n")

	if len(results.IntegrityErrors) > 0 {
		sb.WriteString("INTEGRITY ERRORS\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		for _, msg := range results.IntegrityErrors {
			sb.WriteString("  " + msg + "\n")
		}
		sb.WriteString("\n")
	}

	// Detailed groups
	if len(results.Groups) > 0 {
		sb.WriteString("DUPLICATE GROUPS\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n\n")

		for i, grp := range byWasted(results.Groups) {
			sb.WriteString(fmt.Sprintf("[%d] %d copies of %s, wasted %s\n",
				i+1, grp.Count(), humanize.IBytes(grp.FileSize), humanize.IBytes(grp.WastedSpace)))
			sb.WriteString(fmt.Sprintf("    %s: %s\n", grp.Algorithm, grp.Digest.Hex()))
			for _, m := range grp.Members {
				sb.WriteString(fmt.Sprintf("    %s\n", m.Path))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No duplicates found.\n\n")
	}

	// Footer
	sb.WriteString(strings.Repeat("=", 79) + "\n")
	sb.WriteString(fmt.Sprintf("Scan completed in %s\n", FormatDuration(results.Duration)))

	return os.WriteFile(outputFile, []byte(sb.String()), 0644)
}
