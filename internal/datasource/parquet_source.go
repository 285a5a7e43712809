package datasource

import (
	"context"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// ParquetPriceSource reads a Parquet file with `date` and `price` columns.
type ParquetPriceSource struct {
	path    string
	options sourceOptions
}

func NewParquetPriceSource(path string, opts ...Option) *ParquetPriceSource {
	return &ParquetPriceSource{
		path:    path,
		options: newSourceOptions(opts),
	}
}

// Load implements PriceSource.
func (p *ParquetPriceSource) Load(ctx context.Context) (types.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.options.logger.Debug("Loading Parquet prices", zap.String("path", p.path))

	if _, err := os.Stat(p.path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open %s", p.path)
	}

	points, err := parquet.ReadFile[types.PricePoint](p.path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "failed to parse %s", p.path)
	}

	return p.options.finalize(points), nil
}

// WriteParquet writes series to path as a Parquet file.
func WriteParquet(path string, series types.PriceSeries) error {
	if err := parquet.WriteFile(path, []types.PricePoint(series)); err != nil {
		return errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to write %s", path)
	}

	return nil
}
