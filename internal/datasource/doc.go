// Package datasource imports raw market data from files and generates
// deterministic synthetic fixtures for in-memory runs.
//
// Candles come from CSV with a header naming timestamp, open, high, low,
// close and volume columns in any order. Liquidations come from the JSON
// array served by the liquidation API: timestamp (Unix ms) or
// timestamp_iso, side and cumulated_usd_size per record.
package datasource
