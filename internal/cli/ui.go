package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/versionsync/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failures.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconPending = "·"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// Status lines go to stderr: stdout is reserved for results.
var statusOut io.Writer = os.Stderr

func printSuccess(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// =============================================================================
// Result Summary
// =============================================================================

// outcomeCell returns the icon and text shown for a result.
func outcomeCell(r pipeline.ServiceResult) (string, string) {
	switch r.Kind {
	case pipeline.KindFound:
		return styleIconSuccess.Render(iconSuccess), r.Image + ":" + r.Tag
	case pipeline.KindNotFound:
		msg := "not found"
		if r.Message != "" {
			msg += ": " + r.Message
		}
		return styleIconWarning.Render(iconWarning), msg
	case pipeline.KindRateLimited:
		msg := "rate limited"
		if r.RetryAfter > 0 {
			msg += fmt.Sprintf(" (retry after %s)", r.RetryAfter)
		}
		return styleIconWarning.Render(iconWarning), msg
	default:
		return styleIconError.Render(iconError), r.Message
	}
}

// summaryTable renders one row per service plus a totals line.
func summaryTable(results *pipeline.ResultMap) string {
	var rows [][]string
	for _, e := range results.Entries() {
		icon, text := outcomeCell(e.Result)
		release := e.Result.Release
		if release == "" {
			release = "—"
		}
		rows = append(rows, []string{icon, e.Name, release, text})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Service", "Release", "Result").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return headerStyle
			}
			if col == 2 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(totalsLine(results))
	return b.String()
}

func totalsLine(results *pipeline.ResultMap) string {
	counts := results.Counts()
	parts := []string{
		StyleSuccess.Render(fmt.Sprintf("%d found", counts[pipeline.KindFound])),
		StyleWarning.Render(fmt.Sprintf("%d not found", counts[pipeline.KindNotFound])),
		StyleWarning.Render(fmt.Sprintf("%d rate limited", counts[pipeline.KindRateLimited])),
		StyleError.Render(fmt.Sprintf("%d failed", counts[pipeline.KindError])),
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// printSummary writes the summary table to stderr.
func printSummary(results *pipeline.ResultMap) {
	fmt.Fprintln(statusOut, summaryTable(results))
}
