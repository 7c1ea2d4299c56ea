// Package output provides terminal output utilities for ruleminer.
//
// This package includes:
//   - Table rendering for frequent itemsets, search levels, association rules and run history
//   - A spinner for long-running mining, driven by miner search progress
//   - Human-readable formatting for supports, confidences and dates
//
// All table rendering functions use ASCII characters and ANSI color codes for terminal output.
// The spinner is thread-safe and can be used from multiple goroutines.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/ruleminer/internal/miner"
	"github.com/blackwell-systems/ruleminer/internal/store"
)

// ANSI color codes for confidence display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// Confidence bands used for coloring rules.
const (
	StrongConfidence   = 0.9
	ModerateConfidence = 0.7
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderItemsetTable renders frequent itemsets with their supports.
// Rows keep the caller's order.
func RenderItemsetTable(itemsets []miner.ScoredItemset, relative bool) string {
	if len(itemsets) == 0 {
		return "No frequent itemsets found.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("%-5s %-48s %s\n", "Size", "Itemset", "Support"))
	sb.WriteString(strings.Repeat("─", 68))
	sb.WriteString("\n")

	// Rows
	for _, is := range itemsets {
		sb.WriteString(fmt.Sprintf("%-5d %-48s %s\n",
			len(is.Items),
			truncate(is.Items.String(), 48),
			formatSupport(is.Support, relative)))
	}

	return sb.String()
}

// RenderLevels renders every search frontier, smallest itemsets first.
func RenderLevels(levels []miner.Level, relative bool) string {
	if len(levels) == 0 {
		return "No frequent itemsets found.\n"
	}

	var sb strings.Builder
	for i, level := range levels {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("Level %d: %d of %d candidates frequent\n",
			level.Size, len(level.Survivors), level.Candidates))
		sb.WriteString(RenderItemsetTable(level.Survivors, relative))
	}
	return sb.String()
}

// RenderRuleTable renders association rules with support and confidence.
// Note: Does not sort - expects rules in mining order.
func RenderRuleTable(rules []miner.Rule, relative bool) string {
	if len(rules) == 0 {
		return "No association rules found.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("%-28s %-4s %-28s %-10s %s\n",
		"If", "", "Then", "Support", "Confidence"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	// Rows
	for _, r := range rules {
		conf := fmt.Sprintf("%.3f", r.Confidence)
		sb.WriteString(fmt.Sprintf("%-28s %-4s %-28s %-10s %s\n",
			truncate(r.LHS.String(), 28),
			"=>",
			truncate(r.RHS.String(), 28),
			formatSupport(r.Support, relative),
			colorize(getConfidenceColor(r.Confidence), conf)))
	}

	return sb.String()
}

// RenderRunTable renders saved mining runs.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No saved runs found.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("%-36s %-15s %-16s %-12s %-10s %s\n",
		"Run", "Created", "Source", "Thresholds", "Itemsets", "Rules"))
	sb.WriteString(strings.Repeat("─", 100))
	sb.WriteString("\n")

	// Rows
	for _, run := range runs {
		thresholds := fmt.Sprintf("%s/%.2f",
			formatSupport(run.SupportThreshold, run.RelativeSupport), run.ConfidenceThreshold)

		sb.WriteString(fmt.Sprintf("%-36s %-15s %-16s %-12s %-10d %d\n",
			run.ID,
			formatRelativeTime(run.CreatedAt),
			truncate(run.Source, 16),
			thresholds,
			run.ItemsetCount,
			run.RuleCount))
	}

	return sb.String()
}

// RenderRunSummary renders a one-line description of a run.
func RenderRunSummary(run *store.Run) string {
	return fmt.Sprintf("Run %s on %s (%s rows, support >= %s, confidence >= %.2f): %d itemsets, %d rules",
		run.ID,
		run.Source,
		humanize.Comma(int64(run.RowCount)),
		formatSupport(run.SupportThreshold, run.RelativeSupport),
		run.ConfidenceThreshold,
		run.ItemsetCount,
		run.RuleCount)
}

// formatSupport renders a proportion with three decimals or a row count
// with thousands separators.
func formatSupport(v float64, relative bool) string {
	if relative {
		return fmt.Sprintf("%.3f", v)
	}
	return humanize.Comma(int64(v))
}

// getConfidenceColor returns the ANSI color code for a confidence value.
func getConfidenceColor(c float64) string {
	switch {
	case c >= StrongConfidence:
		return colorGreen
	case c >= ModerateConfidence:
		return colorYellow
	case c > 0:
		return colorRed
	default:
		return colorGray
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		return t.Format("2006-01-02")
	}
}
