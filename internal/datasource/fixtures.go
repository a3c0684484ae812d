package datasource

import (
	"fmt"
	"math"
	"math/rand"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/features"
)

// FixtureOptions configures synthetic market data.
type FixtureOptions struct {
	Symbol    string
	Timeframe string
	StartMs   int64 // first candle open, aligned down to the timeframe
	EndMs     int64 // exclusive
	BasePrice float64
	Seed      int64

	// Probability that a candle carries a liquidation cascade.
	CascadeProbability float64
}

// Fixtures holds generated candles and liquidation events.
type Fixtures struct {
	Candles []*domain.Candle
	Events  []*domain.LiquidationEvent
}

// Default fixture shape.
const (
	DefaultFixtureBasePrice          = 100.0
	DefaultFixtureCascadeProbability = 0.01

	fixtureVolatility   = 0.002  // per-candle return stddev
	fixtureCascadeMove  = 0.015  // price impact of a cascade
	fixtureNoiseEvents  = 0.3    // probability of background liquidations per side
	fixtureNoiseSizeUSD = 2000.0 // median background size
)

// GenerateFixtures produces a deterministic random walk with liquidation
// events. The same options always yield the same data. Cascades move price
// in the liquidated side's direction: SELL cascades (longs liquidated)
// push price down, BUY cascades push it up.
func GenerateFixtures(opts FixtureOptions) (*Fixtures, error) {
	tf, err := features.ParseTimeframe(opts.Timeframe)
	if err != nil {
		return nil, err
	}
	if opts.Symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrInvalidRecord)
	}
	if opts.EndMs <= opts.StartMs {
		return nil, fmt.Errorf("%w: [%d, %d)", features.ErrInvalidRange, opts.StartMs, opts.EndMs)
	}
	if opts.BasePrice <= 0 {
		opts.BasePrice = DefaultFixtureBasePrice
	}
	if opts.CascadeProbability <= 0 {
		opts.CascadeProbability = DefaultFixtureCascadeProbability
	}

	step := tf.DurationMs()
	start := opts.StartMs - mod(opts.StartMs, step)
	rng := rand.New(rand.NewSource(opts.Seed))

	out := &Fixtures{}
	price := opts.BasePrice
	for ts := start; ts < opts.EndMs; ts += step {
		open := price
		ret := rng.NormFloat64() * fixtureVolatility

		var buy, sell float64
		if rng.Float64() < fixtureNoiseEvents {
			buy = noiseSize(rng)
		}
		if rng.Float64() < fixtureNoiseEvents {
			sell = noiseSize(rng)
		}
		if rng.Float64() < opts.CascadeProbability {
			size := noiseSize(rng) * (20 + rng.Float64()*30)
			if rng.Intn(2) == 0 {
				sell += size
				ret -= fixtureCascadeMove
			} else {
				buy += size
				ret += fixtureCascadeMove
			}
		}

		closePrice := open * math.Exp(ret)
		high := math.Max(open, closePrice) * (1 + math.Abs(rng.NormFloat64())*fixtureVolatility/2)
		low := math.Min(open, closePrice) * (1 - math.Abs(rng.NormFloat64())*fixtureVolatility/2)

		out.Candles = append(out.Candles, &domain.Candle{
			Symbol:      opts.Symbol,
			Timeframe:   opts.Timeframe,
			TimestampMs: ts,
			Open:        round(open, 6),
			High:        round(high, 6),
			Low:         round(low, 6),
			Close:       round(closePrice, 6),
			Volume:      round(500+rng.Float64()*1500, 3),
		})

		// one event per side per candle, inside [ts, ts+step)
		offset := rng.Int63n(step)
		if buy > 0 {
			out.Events = append(out.Events, fixtureEvent(opts.Symbol, ts+offset, domain.LiquidationSideBuy, buy))
		}
		if sell > 0 {
			out.Events = append(out.Events, fixtureEvent(opts.Symbol, ts+offset, domain.LiquidationSideSell, sell))
		}

		price = closePrice
	}
	return out, nil
}

func fixtureEvent(symbol string, ts int64, side domain.LiquidationSide, size float64) *domain.LiquidationEvent {
	return &domain.LiquidationEvent{
		Symbol:      symbol,
		TimestampMs: ts,
		Side:        side,
		SizeUSD:     round(size, 2),
	}
}

// noiseSize draws a log-normal size around fixtureNoiseSizeUSD.
func noiseSize(rng *rand.Rand) float64 {
	return fixtureNoiseSizeUSD * math.Exp(rng.NormFloat64())
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
