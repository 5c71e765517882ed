// Package backtest replays a quoting strategy over a feature series.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/observability"
	"bar-feature-lab/internal/strategy"
)

// ErrUnsortedRows is returned when feature rows are not strictly increasing by Ts.
var ErrUnsortedRows = errors.New("feature rows not strictly increasing by ts")

// Results holds backtest output.
type Results struct {
	StrategyID string
	Bars       int

	PlacedQuotes   int
	RejectedQuotes int // non-positive or non-finite price or size
	PassedCancels  int
	FailedCancels  int // quote had already filled or was never placed

	Fills  []domain.QuoteFill
	Points []domain.PnLPoint // one per bar

	Final           domain.PnLPoint
	MaxAbsInventory float64
}

// Options for creating Engine.
type Options struct {
	Metrics *observability.Metrics // defaults to observability.DefaultMetrics
	Logger  zerolog.Logger
}

// Engine runs strategies bar by bar against a simulated quote book.
type Engine struct {
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewEngine creates a new backtest engine.
func NewEngine(opts Options) *Engine {
	e := &Engine{metrics: opts.Metrics, logger: opts.Logger}
	if e.metrics == nil {
		e.metrics = observability.DefaultMetrics
	}
	return e
}

// Run replays strat over rows.
// Steps, per bar:
//  1. Match quotes resting from the previous bar against this bar's mid
//  2. Book executions in the ledger
//  3. Hand the row and position to the strategy
//  4. Apply its cancels and new quotes
//  5. Mark the account at the last finite mid
//
// Quotes placed on a bar can first fill on the next one. Bars with a
// non-finite or non-positive mid neither match nor reach the strategy.
func (e *Engine) Run(ctx context.Context, strat strategy.Strategy, rows []domain.FeatureRow) (results *Results, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		e.metrics.RecordBacktest(status, time.Since(start).Seconds())
	}()

	for i := 1; i < len(rows); i++ {
		if rows[i].Ts <= rows[i-1].Ts {
			return nil, fmt.Errorf("%w: ts %d after %d", ErrUnsortedRows, rows[i].Ts, rows[i-1].Ts)
		}
	}

	results = &Results{
		StrategyID: strat.ID(),
		Bars:       len(rows),
		Points:     make([]domain.PnLPoint, 0, len(rows)),
	}

	var (
		ledger  Ledger
		quotes  book
		ids     strategy.OrderIDs
		markMid = math.NaN()
	)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if usableMid(row.Mid) {
			markMid = row.Mid

			// 1-2. Match and book
			for _, fill := range quotes.match(row) {
				ledger.OnTrade(fill.Side, fill.Px, fill.Qty)
				results.Fills = append(results.Fills, fill)
				e.metrics.RecordQuoteFill(fill.Side.String(), fill.Qty)
			}

			// 3-4. Strategy
			actions := strat.Step(&strategy.StepInput{Row: row, Inventory: ledger.Inventory, IDs: &ids})
			e.apply(actions, &quotes, results)
		}

		// 5. Mark
		point := domain.PnLPoint{
			Ts:        row.Ts,
			Mid:       markMid,
			Cash:      ledger.Cash,
			Inventory: ledger.Inventory,
			Equity:    ledger.Cash,
		}
		if !math.IsNaN(markMid) {
			point.Equity = ledger.MarkToMarket(markMid)
		}
		results.Points = append(results.Points, point)
		results.MaxAbsInventory = math.Max(results.MaxAbsInventory, math.Abs(ledger.Inventory))
	}

	if n := len(results.Points); n > 0 {
		results.Final = results.Points[n-1]
	}

	e.logger.Info().
		Str("strategy", results.StrategyID).
		Int("bars", results.Bars).
		Int("fills", len(results.Fills)).
		Int("resting", quotes.len()).
		Float64("inventory", results.Final.Inventory).
		Float64("equity", results.Final.Equity).
		Msg("backtest complete")

	return results, nil
}

func (e *Engine) apply(actions []strategy.Action, quotes *book, results *Results) {
	for _, a := range actions {
		switch a.Type {
		case strategy.ActionCancel:
			if quotes.cancel(a.OrderID) {
				results.PassedCancels++
			} else {
				results.FailedCancels++
			}
		case strategy.ActionNew:
			if !validQuote(a) {
				results.RejectedQuotes++
				e.logger.Debug().Uint64("order_id", a.OrderID).Float64("px", a.Px).Float64("qty", a.Qty).Msg("quote rejected")
				continue
			}
			quotes.add(&restingQuote{id: a.OrderID, side: a.Side, px: a.Px, qty: a.Qty})
			results.PlacedQuotes++
		}
	}
}

func usableMid(mid float64) bool {
	return mid > 0 && !math.IsInf(mid, 0)
}

func validQuote(a strategy.Action) bool {
	if a.Side != domain.SideBuy && a.Side != domain.SideSell {
		return false
	}
	return usableMid(a.Px) && a.Qty > 0 && !math.IsInf(a.Qty, 0)
}
