package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bar-feature-lab/internal/domain"
)

// WriteFeatures writes the feature table as CSV with the canonical header.
func WriteFeatures(w io.Writer, rows []domain.FeatureRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(domain.FeatureColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(domain.FeatureColumns))
	for _, r := range rows {
		record[0] = strconv.FormatInt(r.Ts, 10)
		record[1] = FormatFloat(r.Mid)
		record[2] = FormatFloat(r.Ret1)
		record[3] = FormatFloat(r.Vol)
		record[4] = FormatFloat(r.Mom)
		record[5] = strconv.FormatInt(r.Volume, 10)
		record[6] = FormatFloat(r.Inventory)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row ts=%d: %w", r.Ts, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFeaturesFile writes the feature table to path, creating parent
// directories as needed.
func WriteFeaturesFile(path string, rows []domain.FeatureRow) error {
	return WriteFile(path, func(w io.Writer) error {
		return WriteFeatures(w, rows)
	})
}

// WritePnL writes a backtest PnL series as CSV.
func WritePnL(w io.Writer, points []domain.PnLPoint) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(domain.PnLColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(domain.PnLColumns))
	for _, p := range points {
		record[0] = strconv.FormatInt(p.Ts, 10)
		record[1] = FormatFloat(p.Mid)
		record[2] = FormatFloat(p.Cash)
		record[3] = FormatFloat(p.Inventory)
		record[4] = FormatFloat(p.Equity)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write pnl ts=%d: %w", p.Ts, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFills writes fills in the fill table layout (ts,qty,side), so a
// simulated execution log can be fed back as --fills.
func WriteFills(w io.Writer, fills []domain.Fill) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{domain.FillColumnTs, domain.FillColumnQty, domain.FillColumnSide}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, f := range fills {
		record := []string{strconv.FormatInt(f.Ts, 10), FormatFloat(f.Qty), f.Side}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write fill ts=%d: %w", f.Ts, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile creates path (and its parent directories) and fills it with write.
func WriteFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FormatFloat renders a float the way the feature CSV expects: shortest
// round-trip digits, a trailing ".0" for integral values, exponent form
// outside [1e-4, 1e16). NaN renders as an empty cell.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	e := strconv.FormatFloat(v, 'e', -1, 64)
	exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
