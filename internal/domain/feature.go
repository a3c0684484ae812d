package domain

// FeatureRow is one candle enriched with liquidation features.
// Corresponds to feature_rows table in ClickHouse.
type FeatureRow struct {
	Symbol      string // trading pair
	Timeframe   string // e.g. 5m
	TimestampMs int64  // candle open (ms)

	AggregationWindowMinutes int // window the aggregated columns were built with
	LookbackWindowDays       int // window the average columns were built with

	// OHLCV, copied from the candle grid
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	// Liquidation features, never NaN
	LiqBuySize        float64 // BUY size binned into this candle
	LiqSellSize       float64 // SELL size binned into this candle
	LiqBuyAggregated  float64 // trailing sum over the aggregation window
	LiqSellAggregated float64 // trailing sum over the aggregation window
	AvgLiqBuy         float64 // trailing mean of non-zero BUY bins over the lookback window
	AvgLiqSell        float64 // trailing mean of non-zero SELL bins over the lookback window
}

// FeatureKey identifies one feature series.
type FeatureKey struct {
	Symbol                   string
	Timeframe                string
	AggregationWindowMinutes int
	LookbackWindowDays       int
}

// Key returns the series the row belongs to.
func (r *FeatureRow) Key() FeatureKey {
	return FeatureKey{
		Symbol:                   r.Symbol,
		Timeframe:                r.Timeframe,
		AggregationWindowMinutes: r.AggregationWindowMinutes,
		LookbackWindowDays:       r.LookbackWindowDays,
	}
}

// FeatureColumns lists the exported column names in output order.
var FeatureColumns = []string{
	"Open", "High", "Low", "Close", "Volume",
	"Liq_Buy_Size", "Liq_Sell_Size",
	"Liq_Buy_Aggregated", "Liq_Sell_Aggregated",
	"Avg_Liq_Buy", "Avg_Liq_Sell",
}

// Values returns the row's columns in FeatureColumns order.
func (r *FeatureRow) Values() []float64 {
	return []float64{
		r.Open, r.High, r.Low, r.Close, r.Volume,
		r.LiqBuySize, r.LiqSellSize,
		r.LiqBuyAggregated, r.LiqSellAggregated,
		r.AvgLiqBuy, r.AvgLiqSell,
	}
}
