// Package features builds liquidation features on top of a candle grid.
//
// Pipeline: raw events -> per-candle bins -> rolling sum (aggregation window)
// and rolling mean of non-zero bins (lookback window) -> merge onto the grid
// -> trim to the requested [start, end) range.
//
// All computation is pure: inputs are never mutated and identical inputs
// always produce identical rows. Every derived column is a finite number;
// windows without liquidation activity resolve to 0.
package features
