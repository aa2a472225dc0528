package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

// Store loads cached price series from data/<SYMBOL>.csv files. Files have
// a header row and date,close columns; dates are either YYYY-MM-DD or
// RFC 3339. Parsed series are cached in memory per symbol.
type Store struct {
	mu      sync.Mutex
	logger  *zap.Logger
	dataDir string
	cache   map[string]types.PriceSeries
}

// NewStore creates a local CSV-backed store rooted at dataDir.
func NewStore(logger *zap.Logger, dataDir string) *Store {
	return &Store{
		logger:  logger,
		dataDir: dataDir,
		cache:   make(map[string]types.PriceSeries),
	}
}

// Load returns the bars in [start, end] for a symbol, reading the CSV file
// on first use.
func (s *Store) Load(ctx context.Context, symbol string, start, end time.Time) (types.PriceSeries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, ok := s.cache[symbol]
	if !ok {
		var err error
		series, err = s.readFile(symbol)
		if err != nil {
			return nil, err
		}
		s.cache[symbol] = series
	}

	var out types.PriceSeries
	for _, bar := range series {
		if bar.Timestamp.Before(start) || bar.Timestamp.After(end) {
			continue
		}
		out = append(out, bar)
	}
	return out, nil
}

func (s *Store) readFile(symbol string) (types.PriceSeries, error) {
	path := filepath.Join(s.dataDir, fmt.Sprintf("%s.csv", symbol))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &types.DataError{Symbol: symbol, Reason: fmt.Sprintf("no cached series at %s", path)}
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, &types.DataError{Symbol: symbol, Reason: "cached series is empty"}
	}

	series := make(types.PriceSeries, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		if len(rec) < 2 {
			return nil, &types.DataError{Symbol: symbol, Reason: "cached row missing close column"}
		}
		ts, err := parseDate(rec[0])
		if err != nil {
			return nil, &types.DataError{Symbol: symbol, Reason: fmt.Sprintf("bad date %q", rec[0])}
		}
		closePx, err := strconv.ParseFloat(rec[1], 64)
		if err != nil || closePx <= 0 {
			return nil, &types.DataError{Symbol: symbol, Reason: fmt.Sprintf("bad close %q", rec[1])}
		}
		series = append(series, types.Bar{Timestamp: ts, Close: closePx})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})

	s.logger.Debug("loaded cached price series",
		zap.String("symbol", symbol),
		zap.Int("bars", len(series)),
	)
	return series, nil
}

func parseDate(s string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
