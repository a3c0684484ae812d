package simulation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/idhash"
	"liquidation-signal-lab/internal/strategy"
)

// EquityPoint is account equity marked to the candle close.
type EquityPoint struct {
	TimestampMs int64
	Equity      float64
}

// Result is the outcome of one simulated pass.
type Result struct {
	StrategyID    string
	Params        domain.StrategyParams
	Trades        []*domain.TradeRecord
	Equity        []EquityPoint // one point per candle
	InitialEquity float64
	FinalEquity   float64
}

// Simulate runs strat over rows with a single-position account.
//
// Execution model:
//   - decisions are taken on the candle close and filled at the next candle open
//   - entries and exits pay slippage against the trader and commission per side
//   - stop-loss and take-profit are checked intrabar from the fill candle on;
//     when both are touched within one candle the stop wins
//   - a level gapped through at the open fills at the open
//   - a position still open after the last candle is closed at its close
func Simulate(rows []*domain.FeatureRow, strat strategy.Strategy, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].TimestampMs <= rows[i-1].TimestampMs {
			return nil, fmt.Errorf("%w: row %d", ErrUnsortedRows, i)
		}
	}

	s := &simulator{
		cfg:    cfg,
		params: strat.Params(),
		id:     strat.ID(),
		ledger: newLedger(cfg),
	}
	res := &Result{
		StrategyID:    s.id,
		Params:        s.params,
		InitialEquity: cfg.InitialEquity,
		Equity:        make([]EquityPoint, 0, len(rows)),
	}

	var pending *order
	for i, row := range rows {
		if pending != nil {
			s.execute(pending, row, i)
			pending = nil
		}
		if s.pos != nil {
			s.checkLevels(row, i)
		}

		d := strat.Next(row, s.view(i))
		if d.Action != strategy.ActionHold && i+1 < len(rows) {
			pending = &order{decision: d, signalTime: row.TimestampMs}
		}

		res.Equity = append(res.Equity, EquityPoint{
			TimestampMs: row.TimestampMs,
			Equity:      s.ledger.mark(s.pos, decimal.NewFromFloat(row.Close)).InexactFloat64(),
		})
	}

	if s.pos != nil {
		last := len(rows) - 1
		s.close(rows[last], last, rows[last].Close, domain.ExitReasonEndOfData)
		res.Equity[last].Equity = s.ledger.equity.InexactFloat64()
	}

	res.Trades = s.trades
	res.FinalEquity = s.ledger.equity.InexactFloat64()
	return res, nil
}

type order struct {
	decision   strategy.Decision
	signalTime int64
}

type simulator struct {
	cfg    Config
	params domain.StrategyParams
	id     string
	ledger *ledger
	pos    *position
	trades []*domain.TradeRecord
}

func (s *simulator) view(i int) *strategy.Position {
	if s.pos == nil {
		return nil
	}
	return &strategy.Position{
		Direction:   s.pos.direction,
		EntryTime:   s.pos.entryTime,
		EntryPrice:  s.pos.entryPrice.InexactFloat64(),
		HoldCandles: i - s.pos.entryIndex,
	}
}

// execute fills a pending order at the open of row.
func (s *simulator) execute(o *order, row *domain.FeatureRow, i int) {
	switch o.decision.Action {
	case strategy.ActionExit:
		if s.pos != nil {
			s.close(row, i, row.Open, o.decision.Reason)
		}
	case strategy.ActionEnterLong, strategy.ActionEnterShort:
		if s.pos != nil || !s.ledger.equity.IsPositive() {
			return
		}
		direction := domain.DirectionLong
		if o.decision.Action == strategy.ActionEnterShort {
			direction = domain.DirectionShort
		}
		if row.Open <= 0 {
			return
		}
		price := slipped(row.Open, s.params.SlippagePctPerSide, direction == domain.DirectionLong)
		margin, qty, fee := s.ledger.size(price, s.params.PositionSizeFraction)
		if !qty.IsPositive() {
			return
		}
		s.pos = &position{
			direction:  direction,
			signalTime: o.signalTime,
			entryTime:  row.TimestampMs,
			entryIndex: i,
			entryPrice: price,
			qty:        qty,
			margin:     margin,
			entryFee:   fee,
			stopLoss:   o.decision.StopLoss,
			takeProfit: o.decision.TakeProfit,
		}
	}
}

// checkLevels closes the position when row touches its stop or target.
func (s *simulator) checkLevels(row *domain.FeatureRow, i int) {
	p := s.pos
	if p.long() {
		if p.stopLoss > 0 && row.Low <= p.stopLoss {
			s.close(row, i, math.Min(row.Open, p.stopLoss), domain.ExitReasonStopLoss)
			return
		}
		if p.takeProfit > 0 && row.High >= p.takeProfit {
			s.close(row, i, math.Max(row.Open, p.takeProfit), domain.ExitReasonTakeProfit)
		}
		return
	}
	if p.stopLoss > 0 && row.High >= p.stopLoss {
		s.close(row, i, math.Max(row.Open, p.stopLoss), domain.ExitReasonStopLoss)
		return
	}
	if p.takeProfit > 0 && row.Low <= p.takeProfit {
		s.close(row, i, math.Min(row.Open, p.takeProfit), domain.ExitReasonTakeProfit)
	}
}

// close settles the position at price on row and records the trade.
func (s *simulator) close(row *domain.FeatureRow, i int, price float64, reason string) {
	p := s.pos
	// closing a long sells, closing a short buys
	exit := slipped(price, s.params.SlippagePctPerSide, !p.long())
	exitFee, pnl := s.ledger.settle(p, exit)

	outcome := domain.OutcomeClassLoss
	if pnl.IsPositive() {
		outcome = domain.OutcomeClassWin
	}

	s.trades = append(s.trades, &domain.TradeRecord{
		TradeID:         idhash.ComputeTradeID(s.cfg.RunID, s.cfg.Symbol, s.id, p.signalTime),
		RunID:           s.cfg.RunID,
		Symbol:          s.cfg.Symbol,
		StrategyID:      s.id,
		Direction:       p.direction,
		EntrySignalTime: p.signalTime,
		EntryTime:       p.entryTime,
		EntryPrice:      p.entryPrice.InexactFloat64(),
		Quantity:        p.qty.InexactFloat64(),
		Margin:          p.margin.InexactFloat64(),
		ExitTime:        row.TimestampMs,
		ExitPrice:       exit.InexactFloat64(),
		ExitReason:      reason,
		Commission:      p.entryFee.Add(exitFee).InexactFloat64(),
		PnL:             pnl.InexactFloat64(),
		ReturnPct:       pnl.Div(p.margin).Mul(hundred).InexactFloat64(),
		OutcomeClass:    outcome,
		HoldCandles:     i - p.entryIndex,
	})
	s.pos = nil
}
