package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// StrategyInfo identifies the strategy a report was produced for.
type StrategyInfo struct {
	Type        string `json:"type" yaml:"type"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// ParameterValue is one resolved parameter, in the order the strategy declares it.
type ParameterValue struct {
	Name  string  `json:"name" yaml:"name"`
	Key   string  `json:"key" yaml:"key"`
	Value float64 `json:"value" yaml:"value"`
}

// Report is the record of one backtest run.
type Report struct {
	ID         string                     `json:"id" yaml:"id"`
	Timestamp  time.Time                  `json:"timestamp" yaml:"timestamp"`
	Strategy   StrategyInfo               `json:"strategy" yaml:"strategy"`
	Parameters []ParameterValue           `json:"parameters" yaml:"parameters"`
	DataPath   string                     `json:"dataPath,omitempty" yaml:"data_path,omitempty"`
	Result     types.BacktestResult       `json:"result" yaml:"result"`
	Indicators *types.CrossoverIndicators `json:"indicators,omitempty" yaml:"-"`
}

// Option configures a Report built by NewReport.
type Option func(*Report)

// WithDataPath records the file the price series was loaded from.
func WithDataPath(path string) Option {
	return func(r *Report) {
		r.DataPath = path
	}
}

// WithIndicators attaches the moving averages used for charting.
func WithIndicators(indicators types.CrossoverIndicators) Option {
	return func(r *Report) {
		r.Indicators = &indicators
	}
}

// WithTimestamp overrides the creation time of the report.
func WithTimestamp(t time.Time) Option {
	return func(r *Report) {
		r.Timestamp = t
	}
}

// NewReport builds the report of a run of def with the resolved params. Parameters the
// definition declares come first in declaration order, any others follow sorted by key.
func NewReport(def strategy.StrategyDefinition, params types.ParameterValues, result types.BacktestResult, opts ...Option) Report {
	report := Report{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Strategy: StrategyInfo{
			Type:        def.Type,
			Name:        def.Name,
			Description: def.Description,
		},
		Parameters: orderedParameters(def, params),
		DataPath:   "",
		Result:     result,
		Indicators: nil,
	}

	for _, opt := range opts {
		opt(&report)
	}

	return report
}

func orderedParameters(def strategy.StrategyDefinition, params types.ParameterValues) []ParameterValue {
	values := make([]ParameterValue, 0, len(params))
	declared := make(map[string]bool, len(def.Params))

	for _, p := range def.Params {
		declared[p.Key] = true

		if v, ok := params[p.Key]; ok {
			values = append(values, ParameterValue{Name: p.Name, Key: p.Key, Value: v})
		}
	}

	extra := make([]string, 0)
	for key := range params {
		if !declared[key] {
			extra = append(extra, key)
		}
	}

	slices.Sort(extra)

	for _, key := range extra {
		values = append(values, ParameterValue{Name: key, Key: key, Value: params[key]})
	}

	return values
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName returns report_<strategy name>_<date>.<ext> with the name lower-cased and
// whitespace runs replaced by underscores.
func (r Report) FileName(ext string) string {
	name := whitespace.ReplaceAllString(strings.ToLower(r.Strategy.Name), "_")

	return fmt.Sprintf("report_%s_%s.%s", name, r.Timestamp.Format(types.DateLayout), strings.TrimPrefix(ext, "."))
}

// Write saves the report as YAML or JSON depending on the extension of path.
func (r Report) Write(path string) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(r)
	case ".json":
		data, err = json.MarshalIndent(r, "", "  ")
	default:
		return errors.Newf(errors.ErrCodeReportWriteFailed, "unsupported report format: %s", path)
	}

	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to marshal report", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to create %s", dir)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to write %s", path)
	}

	return nil
}

// Summary renders the report as plain text with every amount fixed to 2 decimals.
func (r Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Strategy: %s\n", r.Strategy.Name)
	fmt.Fprintf(&b, "Description: %s\n", r.Strategy.Description)

	b.WriteString("Parameters:\n")

	for _, p := range r.Parameters {
		fmt.Fprintf(&b, "  %s: %s\n", p.Name, formatNumber(p.Value))
	}

	result := r.Result

	b.WriteString("Performance Metrics:\n")
	fmt.Fprintf(&b, "  Win Rate: %s%%\n", fixed2(result.WinRate))
	fmt.Fprintf(&b, "  Total Profit: $%s\n", fixed2(result.TotalProfit))
	fmt.Fprintf(&b, "  Max Drawdown: $%s\n", fixed2(result.MaxDrawdown))
	fmt.Fprintf(&b, "  Total Trades: %d\n", result.TotalTrades)
	fmt.Fprintf(&b, "  Profit Factor: %s\n", fixed2(float64(result.ProfitFactor)))

	if len(result.Trades) > 0 {
		b.WriteString("Trade History:\n")

		for i, t := range result.Trades {
			fmt.Fprintf(&b, "  %d. %s - Entry: $%s (%s), Exit: $%s (%s), Profit: $%s\n",
				i+1, t.Direction,
				fixed2(t.EntryPrice), t.EntryDate,
				fixed2(t.ExitPrice), t.ExitDate,
				fixed2(t.Profit),
			)
		}
	}

	return b.String()
}

// fixed2 formats v with exactly two decimals. Infinities and NaN have no decimal form.
func fixed2(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}

	return decimal.NewFromFloat(v).StringFixed(2)
}

// formatNumber prints a parameter value without trailing zeros.
func formatNumber(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fixed2(v)
	}

	return decimal.NewFromFloat(v).String()
}
