package datasource

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// PriceSource loads a price series ordered by date.
type PriceSource interface {
	// Load reads the whole series, restricted to the configured date range.
	Load(ctx context.Context) (types.PriceSeries, error)
}

// DefaultTable is the DuckDB table read when none is configured.
const DefaultTable = "prices"

type sourceOptions struct {
	start  optional.Option[string]
	end    optional.Option[string]
	table  string
	logger *logger.Logger
}

// Option configures a PriceSource built by NewPriceSource.
type Option func(*sourceOptions)

// WithDateRange keeps only points with start <= date <= end. Either bound may be None.
func WithDateRange(start, end optional.Option[string]) Option {
	return func(o *sourceOptions) {
		o.start = start
		o.end = end
	}
}

// WithTable sets the DuckDB table holding the date and price columns.
func WithTable(table string) Option {
	return func(o *sourceOptions) {
		o.table = table
	}
}

// WithLogger sets the logger used by the source.
func WithLogger(log *logger.Logger) Option {
	return func(o *sourceOptions) {
		o.logger = log
	}
}

func newSourceOptions(opts []Option) sourceOptions {
	o := sourceOptions{
		start:  optional.None[string](),
		end:    optional.None[string](),
		table:  DefaultTable,
		logger: logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// NewPriceSource picks the source implementation from the extension of path:
// .csv, .parquet, or .duckdb / .db.
func NewPriceSource(path string, opts ...Option) (PriceSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVPriceSource(path, opts...), nil
	case ".parquet":
		return NewParquetPriceSource(path, opts...), nil
	case ".duckdb", ".db":
		return NewDuckDBPriceSource(path, opts...), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedDataSource, "unsupported data file: %s", path)
	}
}

// inRange reports whether date falls inside the configured bounds.
func (o sourceOptions) inRange(date string) bool {
	if o.start.IsSome() && date < o.start.Unwrap() {
		return false
	}

	if o.end.IsSome() && date > o.end.Unwrap() {
		return false
	}

	return true
}

// finalize filters points outside the date range and sorts the rest by date.
func (o sourceOptions) finalize(points []types.PricePoint) types.PriceSeries {
	series := make(types.PriceSeries, 0, len(points))

	for _, p := range points {
		if o.inRange(p.Date) {
			series = append(series, p)
		}
	}

	series.SortByDate()

	return series
}
