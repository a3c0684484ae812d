package reporting

import (
	"os"
	"path/filepath"
)

// Output file names written by WriteFiles.
const (
	ReportFile    = "report.md"
	SummariesFile = "summaries.csv"
	TradesFile    = "trades.csv"
)

// WriteFiles renders r into dir, creating it if needed, and returns the
// paths written.
func WriteFiles(dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	summaryCSV, err := RenderSummaryCSV(r.Units)
	if err != nil {
		return nil, err
	}
	tradeCSV, err := RenderTradesCSV(r.Trades)
	if err != nil {
		return nil, err
	}

	files := []struct {
		name    string
		content string
	}{
		{ReportFile, RenderMarkdown(r)},
		{SummariesFile, summaryCSV},
		{TradesFile, tradeCSV},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
