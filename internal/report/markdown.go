package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// generateMarkdown generates a Markdown report
func (g *Generator) generateMarkdown(results *models.ScanResults, outputFile string) error {
	var sb strings.Builder

	// Header
	sb.WriteString("# Silverscan Duplicate Report\n\n")
	sb.WriteString(fmt.Sprintf("**Version:** %s  \n", results.Version))
	sb.WriteString(fmt.Sprintf("**Session:** `%s`  \n", results.SessionID))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", results.EndTime.Format("2006-01-02 15:04:05")))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Roots | `%s` |\n", strings.Join(results.Roots, "`, `")))
	sb.WriteString(fmt.Sprintf("| Status | %s |\n", results.Status))
	sb.WriteString(fmt.Sprintf("| Duration | %s |\n", FormatDuration(results.Duration)))
	sb.WriteString(fmt.Sprintf("| Directories | %d |\n", results.ProcessedDirs))
	sb.WriteString(fmt.Sprintf("| Files | %d |\n", results.ProcessedFiles))
	sb.WriteString(fmt.Sprintf("| Total size | %s |\n", humanize.IBytes(results.TotalBytes)))
	sb.WriteString(fmt.Sprintf("| Warnings | %d |\n", results.Warnings))
	sb.WriteString(fmt.Sprintf("| **Duplicate groups** | **%d** |\n", len(results.Groups)))
	sb.WriteString(fmt.Sprintf("| **Wasted space** | **%s** |\n\n", humanize.IBytes(results.WastedSpace)))

	sb.WriteString("### By media type\n\n")
	sb.WriteString("| Type | Files |\n")
	sb.WriteString("|------|-------|\n")
	for _, class := range models.MediaClasses {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", class, results.MediaCounts[class]))
	}
	sb.WriteString("\n")

	if len(results.IntegrityErrors) > 0 {
		sb.WriteString("## Integrity errors\n\n")
		for _, msg := range results.IntegrityErrors {
			sb.WriteString(fmt.Sprintf("- %s\n", msg))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Duplicate groups\n\n")
	if len(results.Groups) == 0 {
		sb.WriteString("No duplicates found.\n")
	} else {
		t := groupTable(byWasted(results.Groups), 0)
		sb.WriteString(t.RenderMarkdown())
		sb.WriteString("\n")
	}

	return os.WriteFile(outputFile, []byte(sb.String()), 0644)
}
