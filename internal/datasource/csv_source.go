package datasource

import (
	"context"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// CSVPriceSource reads a CSV file with a `date,price` header.
type CSVPriceSource struct {
	path    string
	options sourceOptions
}

func NewCSVPriceSource(path string, opts ...Option) *CSVPriceSource {
	return &CSVPriceSource{
		path:    path,
		options: newSourceOptions(opts),
	}
}

// Load implements PriceSource.
func (c *CSVPriceSource) Load(ctx context.Context) (types.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.options.logger.Debug("Loading CSV prices", zap.String("path", c.path))

	csvFile, err := os.Open(c.path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open %s", c.path)
	}
	defer csvFile.Close()

	var points []types.PricePoint
	if err := gocsv.UnmarshalFile(csvFile, &points); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "failed to parse %s", c.path)
	}

	return c.options.finalize(points), nil
}

// WriteCSV writes series to path with a `date,price` header.
func WriteCSV(path string, series types.PriceSeries) error {
	csvFile, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to create %s", path)
	}
	defer csvFile.Close()

	points := []types.PricePoint(series)
	if err := gocsv.MarshalFile(&points, csvFile); err != nil {
		return errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to write %s", path)
	}

	return nil
}
