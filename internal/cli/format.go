package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/danieljhkim/treepurge/internal/journal"
)

// Palette for human-readable output. fatih/color drops the escapes when
// stdout is not a terminal or NO_COLOR is set.
var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)
)

// columnGap separates table columns.
const columnGap = "  "

// statusColor maps a journal status onto the palette.
func statusColor(status string) *color.Color {
	switch status {
	case journal.StatusSubmitted:
		return successColor
	case journal.StatusFailed:
		return errorColor
	case journal.StatusSkipped, journal.StatusDryRun:
		return warningColor
	default:
		return dimColor
	}
}

// PrintSection starts a block of output, e.g. "▸ Purge Plan".
func PrintSection(title string) {
	_, _ = headerColor.Printf("\n▸ %s\n\n", title)
}

// PrintSubsection prints an indented heading inside a section.
func PrintSubsection(title string) {
	_, _ = infoColor.Printf("%s%s\n", columnGap, title)
}

func PrintSuccess(msg string) {
	_, _ = successColor.Printf("✓ %s\n", msg)
}

func PrintWarning(msg string) {
	_, _ = warningColor.Printf("⚠ %s\n", msg)
}

// PrintError writes to stderr so --json output on stdout stays parseable.
func PrintError(msg string) {
	_, _ = errorColor.Fprintf(os.Stderr, "✗ %s\n", msg)
}

func PrintInfo(msg string) {
	fmt.Println(msg)
}

// PrintLabelValue prints "  Label: value" with a dimmed value.
func PrintLabelValue(label, value string) {
	PrintLabelValueWithColor(label, value, valueColor)
}

// PrintLabelValueWithColor is PrintLabelValue with a caller-chosen value color,
// used for statuses and the purge gate.
func PrintLabelValueWithColor(label, value string, valueClr *color.Color) {
	_, _ = labelColor.Printf("%s%s: ", columnGap, label)
	_, _ = valueClr.Println(value)
}

// PrintList prints one bullet per item, indented by depth levels.
func PrintList(items []string, depth int) {
	prefix := strings.Repeat(columnGap, depth)
	for _, item := range items {
		_, _ = infoColor.Printf("%s• %s\n", prefix, item)
	}
}

// PrintTable prints rows under an underlined header. Cells past the last
// header are dropped; short rows are padded.
func PrintTable(headers []string, rows [][]string) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}

	widths := columnWidths(headers, rows)

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("-", w)
	}

	printRow(headerColor, headers, widths)
	printRow(nil, rules, widths)
	for _, row := range rows {
		printRow(valueColor, row, widths)
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}
	return widths
}

// printRow prints one padded table line; a nil color prints plain text.
func printRow(clr *color.Color, cells []string, widths []int) {
	padded := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded[i] = fmt.Sprintf("%-*s", w, cell)
	}
	line := columnGap + strings.Join(padded, columnGap)
	if clr == nil {
		fmt.Println(line)
		return
	}
	_, _ = clr.Println(line)
}

// PrintEmptyState prints a dimmed placeholder such as "No history yet".
func PrintEmptyState(msg string) {
	_, _ = dimColor.Printf("%s%s\n", columnGap, msg)
}

// countOf renders "1 URL" or "3 URLs".
func countOf(n int, singular, plural string) string {
	noun := plural
	if n == 1 {
		noun = singular
	}
	return fmt.Sprintf("%d %s", n, noun)
}
