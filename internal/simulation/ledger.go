package simulation

import (
	"github.com/shopspring/decimal"

	"liquidation-signal-lab/internal/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// ledger tracks realized equity in exact decimal arithmetic.
type ledger struct {
	equity     decimal.Decimal
	commission decimal.Decimal // fraction of notional per side
	leverage   decimal.Decimal
}

func newLedger(cfg Config) *ledger {
	return &ledger{
		equity:     decimal.NewFromFloat(cfg.InitialEquity),
		commission: decimal.NewFromFloat(cfg.CommissionPct).Div(hundred),
		leverage:   decimal.NewFromFloat(cfg.Leverage),
	}
}

// size returns margin, quantity and entry fee for a position committing
// fraction of current equity at price.
func (l *ledger) size(price decimal.Decimal, fraction float64) (margin, qty, fee decimal.Decimal) {
	margin = l.equity.Mul(decimal.NewFromFloat(fraction))
	notional := margin.Mul(l.leverage)
	qty = notional.Div(price)
	fee = notional.Mul(l.commission)
	return margin, qty, fee
}

// settle books the round trip and returns exit fee and net PnL.
func (l *ledger) settle(p *position, exitPrice decimal.Decimal) (fee, pnl decimal.Decimal) {
	fee = exitPrice.Mul(p.qty).Mul(l.commission)
	pnl = p.gross(exitPrice).Sub(p.entryFee).Sub(fee)
	l.equity = l.equity.Add(pnl)
	return fee, pnl
}

// mark returns equity including the unrealized result of p at price.
func (l *ledger) mark(p *position, price decimal.Decimal) decimal.Decimal {
	if p == nil {
		return l.equity
	}
	return l.equity.Add(p.gross(price)).Sub(p.entryFee)
}

// slipped moves price against the trader by pct percent.
// buying pays more, selling receives less.
func slipped(price float64, pct float64, buying bool) decimal.Decimal {
	p := decimal.NewFromFloat(price)
	s := decimal.NewFromFloat(pct).Div(hundred)
	if buying {
		return p.Mul(one.Add(s))
	}
	return p.Mul(one.Sub(s))
}

// position is the single open trade.
type position struct {
	direction  string
	signalTime int64
	entryTime  int64
	entryIndex int
	entryPrice decimal.Decimal
	qty        decimal.Decimal
	margin     decimal.Decimal
	entryFee   decimal.Decimal
	stopLoss   float64 // 0 = none
	takeProfit float64 // 0 = none
}

func (p *position) long() bool { return p.direction == domain.DirectionLong }

func (p *position) gross(exitPrice decimal.Decimal) decimal.Decimal {
	diff := exitPrice.Sub(p.entryPrice)
	if !p.long() {
		diff = diff.Neg()
	}
	return diff.Mul(p.qty)
}
