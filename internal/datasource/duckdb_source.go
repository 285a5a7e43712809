package datasource

import (
	"context"
	"database/sql"
	"os"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBPriceSource reads the `date` and `price` columns of a table in a DuckDB database file.
type DuckDBPriceSource struct {
	path    string
	options sourceOptions
	sq      squirrel.StatementBuilderType
}

func NewDuckDBPriceSource(path string, opts ...Option) *DuckDBPriceSource {
	return &DuckDBPriceSource{
		path:    path,
		options: newSourceOptions(opts),
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Load implements PriceSource. The date range is applied in the query.
func (d *DuckDBPriceSource) Load(ctx context.Context) (types.PriceSeries, error) {
	if _, err := os.Stat(d.path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open %s", d.path)
	}

	db, err := sql.Open("duckdb", d.path+"?access_mode=read_only")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}
	defer db.Close()

	query, args, err := d.buildQuery()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	d.options.logger.Debug("Loading DuckDB prices",
		zap.String("path", d.path),
		zap.String("query", query),
	)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query prices", err)
	}
	defer rows.Close()

	var points []types.PricePoint

	for rows.Next() {
		var point types.PricePoint
		if err := rows.Scan(&point.Date, &point.Price); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to scan price row", err)
		}

		points = append(points, point)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read prices", err)
	}

	return d.options.finalize(points), nil
}

func (d *DuckDBPriceSource) buildQuery() (string, []interface{}, error) {
	query := d.sq.
		Select("CAST(date AS VARCHAR) AS date", "CAST(price AS DOUBLE) AS price").
		From(d.options.table).
		OrderBy("date ASC")

	if d.options.start.IsSome() {
		query = query.Where(squirrel.GtOrEq{"CAST(date AS VARCHAR)": d.options.start.Unwrap()})
	}

	if d.options.end.IsSome() {
		query = query.Where(squirrel.LtOrEq{"CAST(date AS VARCHAR)": d.options.end.Unwrap()})
	}

	return query.ToSql()
}
