package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"bar-feature-lab/internal/domain"
)

// ErrInvalidTimestamp is returned when a bar ts cell does not parse.
var ErrInvalidTimestamp = errors.New("invalid ts")

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

// readHeader reads the first record. An empty input has no columns.
func readHeader(cr *csv.Reader) (header, error) {
	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return parseHeader(nil), nil
	}
	if err != nil {
		return header{}, fmt.Errorf("read header: %w", err)
	}
	return parseHeader(record), nil
}

// ReadBars reads a bar table, validates its schema and returns bars
// sorted by ts with duplicate timestamps removed (first occurrence wins).
// Steps:
//  1. Lowercase header and check required columns
//  2. Parse rows (volume coerced to a non-negative integer)
//  3. Stable sort by ts
//  4. Drop repeated ts
func ReadBars(r io.Reader) ([]domain.Bar, Stats, error) {
	var stats Stats
	cr := newReader(r)

	// 1. Schema
	h, err := readHeader(cr)
	if err != nil {
		return nil, stats, err
	}
	if err := h.require(TableBars, requiredBarColumns); err != nil {
		return nil, stats, err
	}

	// 2. Rows
	var bars []domain.Bar
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read bars line %d: %w", line, err)
		}

		ts, ok := parseInt(h.cell(record, "ts"))
		if !ok {
			return nil, stats, fmt.Errorf("bars line %d: %w %q", line, ErrInvalidTimestamp, h.cell(record, "ts"))
		}

		bar := domain.Bar{Ts: ts}
		prices := []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close}
		for i, name := range []string{"open", "high", "low", "close"} {
			v, ok := parseFloat(h.cell(record, name))
			if !ok {
				stats.CoercedPrices++
			}
			*prices[i] = v
		}

		vol, ok := coerceVolume(h.cell(record, "volume"))
		if !ok {
			stats.CoercedVolume++
		}
		bar.Volume = vol

		bars = append(bars, bar)
	}

	// 3. Sort
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Ts < bars[j].Ts })

	// 4. Dedupe
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && b.Ts == bars[i-1].Ts {
			stats.DuplicateBars++
			continue
		}
		out = append(out, b)
	}

	stats.BarRows = len(out)
	return out, stats, nil
}

// ReadBarsFile opens path and reads it with ReadBars.
func ReadBarsFile(path string) ([]domain.Bar, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open bars: %w", err)
	}
	defer f.Close()

	return ReadBars(f)
}

// ReadFills reads a fill table. ts and qty are required; side is optional.
// Rows whose ts does not parse are dropped. Malformed or non-finite qty becomes 0.
// The result is never nil on success, so callers can tell an empty fill
// table apart from no fill table.
func ReadFills(r io.Reader) ([]domain.Fill, Stats, error) {
	stats := Stats{FillsAvailable: true}
	cr := newReader(r)

	h, err := readHeader(cr)
	if err != nil {
		return nil, stats, err
	}
	if err := h.require(TableFills, requiredFillColumns); err != nil {
		return nil, stats, err
	}
	hasSide := h.has(domain.FillColumnSide)

	fills := make([]domain.Fill, 0)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read fills line %d: %w", line, err)
		}

		ts, ok := parseFillTs(h.cell(record, domain.FillColumnTs))
		if !ok {
			stats.DroppedFills++
			continue
		}

		qty, ok := coerceQty(h.cell(record, domain.FillColumnQty))
		if !ok {
			stats.CoercedQty++
		}

		fill := domain.Fill{Ts: ts, Qty: qty, HasSide: hasSide}
		if hasSide {
			fill.Side = h.cell(record, domain.FillColumnSide)
		}
		fills = append(fills, fill)
	}

	stats.FillRows = len(fills)
	return fills, stats, nil
}

// parseFillTs accepts integer or float timestamps; floats truncate.
func parseFillTs(s string) (int64, bool) {
	if v, ok := parseInt(s); ok {
		return v, true
	}
	f, ok := parseFloat(s)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > 9.2e18 {
		return 0, false
	}
	return int64(f), true
}

// ReadFillsFile reads a fill table from path. A missing file is not an
// error: it returns nil fills and Stats.FillsAvailable=false.
func ReadFillsFile(path string) ([]domain.Fill, Stats, error) {
	if strings.TrimSpace(path) == "" {
		return nil, Stats{}, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, Stats{}, nil
	}
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open fills: %w", err)
	}
	defer f.Close()

	return ReadFills(f)
}
