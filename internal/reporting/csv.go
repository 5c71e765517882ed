package reporting

import (
	"fmt"
	"strings"
)

// RenderColumnStatsCSV renders column statistics as CSV string.
func RenderColumnStatsCSV(cols []ColumnStats) string {
	var sb strings.Builder

	// Header
	sb.WriteString("column,min,p10,median,p90,max,mean,stddev,zeros,non_finite\n")

	// Rows
	for _, c := range cols {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%d\n",
			c.Name,
			c.Min,
			c.P10,
			c.Median,
			c.P90,
			c.Max,
			c.Mean,
			c.Stddev,
			c.Zeros,
			c.NonFinite,
		))
	}

	return sb.String()
}
