package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RenderSummary renders a run summary as Markdown string.
func RenderSummary(s *Summary) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Feature Run Summary\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339)))

	// Run
	sb.WriteString("## Run\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Run ID | %s |\n", s.RunID))
	sb.WriteString(fmt.Sprintf("| Series ID | %s |\n", s.SeriesID))
	sb.WriteString(fmt.Sprintf("| Source | %s |\n", s.Source))
	if s.OutPath != "" {
		sb.WriteString(fmt.Sprintf("| Output | %s |\n", s.OutPath))
	}
	sb.WriteString(fmt.Sprintf("| Vol Window | %d |\n", s.VolWindow))
	sb.WriteString(fmt.Sprintf("| Mom Window | %d |\n", s.MomWindow))
	sb.WriteString(fmt.Sprintf("| Rows | %d |\n", s.Rows))
	sb.WriteString(fmt.Sprintf("| First ts | %d |\n", s.FirstTs))
	sb.WriteString(fmt.Sprintf("| Last ts | %d |\n", s.LastTs))
	sb.WriteString(fmt.Sprintf("| Digest | `%s` |\n", s.Digest))
	sb.WriteString("\n")

	// Input Quality
	sb.WriteString("## Input Quality\n\n")
	in := s.Input
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Bars kept | %d |\n", in.BarRows))
	sb.WriteString(fmt.Sprintf("| Duplicate bars dropped | %d |\n", in.DuplicateBars))
	sb.WriteString(fmt.Sprintf("| Volume cells coerced | %d |\n", in.CoercedVolume))
	sb.WriteString(fmt.Sprintf("| Price cells unparsable | %d |\n", in.CoercedPrices))
	if in.FillsAvailable {
		sb.WriteString(fmt.Sprintf("| Fills kept | %d |\n", in.FillRows))
		sb.WriteString(fmt.Sprintf("| Fills dropped (bad ts) | %d |\n", in.DroppedFills))
		sb.WriteString(fmt.Sprintf("| Qty cells coerced | %d |\n", in.CoercedQty))
	} else {
		sb.WriteString("| Fills | none (inventory = 0) |\n")
	}
	sb.WriteString("\n")

	// Columns
	sb.WriteString("## Columns\n\n")
	if len(s.Columns) > 0 && s.Rows > 0 {
		sb.WriteString("| Column | Min | P10 | Median | P90 | Max | Mean | Stddev | Zeros | Non-finite |\n")
		sb.WriteString("|--------|-----|-----|--------|-----|-----|------|--------|-------|------------|\n")
		for _, c := range s.Columns {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %d | %d |\n",
				c.Name,
				formatStat(c.Min),
				formatStat(c.P10),
				formatStat(c.Median),
				formatStat(c.P90),
				formatStat(c.Max),
				formatStat(c.Mean),
				formatStat(c.Stddev),
				c.Zeros,
				c.NonFinite,
			))
		}
	} else {
		sb.WriteString("No rows.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.6f", v)
}
