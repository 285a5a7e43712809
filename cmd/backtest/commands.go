package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/api"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/report"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/mocks"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// newLogger logs to stderr so entries never interleave with the summaries on stdout.
func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	log, err := logger.NewLoggerWithOutput(cmd.String("log-level"), "stderr")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// newEngine creates an initialized engine from the YAML file at configPath, or the
// default config when configPath is empty.
func newEngine(configPath string, log *logger.Logger) (engine.Engine, error) {
	config := ""

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		config = string(data)
	}

	backtestEngine := enginev1.NewBacktestEngineV1(enginev1.WithLogger(log))
	if err := backtestEngine.Initialize(config); err != nil {
		return nil, err
	}

	return backtestEngine, nil
}

// parseParams turns repeated key=value flags into parameter overrides.
func parseParams(raw []string) (types.ParameterValues, error) {
	params := make(types.ParameterValues, len(raw))

	for _, entry := range raw {
		key, value, found := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)

		if !found || key == "" {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "parameter %q is not in key=value form", entry)
		}

		number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "parameter %s has a non-numeric value", key)
		}

		params[key] = number
	}

	return params, nil
}

func optionalDate(value string) optional.Option[string] {
	if value == "" {
		return optional.None[string]()
	}

	return optional.Some(value)
}

func strategiesAction(_ context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TYPE", "NAME", "PARAMETERS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})

	for _, def := range strategy.NewRegistry().List() {
		params := make([]string, 0, len(def.Params))
		for _, p := range def.Params {
			params = append(params, fmt.Sprintf("%s=%s", p.Key, strconv.FormatFloat(p.Default, 'f', -1, 64)))
		}

		t.Row(def.Type, def.Name, strings.Join(params, ", "))
	}

	fmt.Fprintln(out, titleStyle.Render("Available strategies"))
	fmt.Fprintln(out, t.Render())

	return nil
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	strategyType := cmd.String("type")
	if strategyType == "" {
		config := enginev1.EmptyConfig()
		schema, err := config.GenerateSchemaJSON()
		if err != nil {
			return err
		}

		fmt.Fprintln(out, schema)

		return nil
	}

	def, err := strategy.NewRegistry().Get(strategyType)
	if err != nil {
		return err
	}

	schema, err := strategy.ParameterSchemaJSON(def)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, schema)

	return nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	format := strings.ToLower(cmd.String("format"))
	if format != "yaml" && format != "json" {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported report format: %s", format)
	}

	overrides, err := parseParams(cmd.StringSlice("param"))
	if err != nil {
		return err
	}

	backtestEngine, err := newEngine(cmd.String("config"), log)
	if err != nil {
		return err
	}

	registry := strategy.NewRegistry()
	strategyType := cmd.String("type")

	if wasmPath := cmd.String("strategy-wasm"); wasmPath != "" {
		strategyRuntime, err := backtestEngine.LoadStrategyFromFile(wasmPath)
		if err != nil {
			return err
		}

		name := cmd.String("name")
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(wasmPath), filepath.Ext(wasmPath))
		}

		def := strategy.StrategyDefinition{
			Type:        strategy.NewCustomStrategyType(),
			Name:        name,
			Description: "Loaded from " + wasmPath,
			Params:      nil,
			Runtime:     strategyRuntime,
		}

		if err := registry.Add(def); err != nil {
			return err
		}

		strategyType = def.Type
	}

	def, err := registry.Get(strategyType)
	if err != nil {
		return err
	}

	files, err := filepath.Glob(cmd.String("data"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid data pattern", err)
	}

	if len(files) == 0 {
		return errors.Newf(errors.ErrCodeDataNotFound, "no data files match %s", cmd.String("data"))
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(fmt.Sprintf("Backtesting %s", def.Name)),
		progressbar.OptionSetWriter(cmd.Root().ErrWriter),
		progressbar.OptionShowCount(),
	)

	summaries := make([]string, 0, len(files))

	for _, file := range files {
		summary, err := runFile(ctx, backtestEngine, def, overrides, file, cmd, format)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		summaries = append(summaries, summary)

		log.Debug("Backtest finished", zap.String("file", file))
		_ = bar.Add(1)
	}

	_ = bar.Finish()
	fmt.Fprintln(cmd.Root().ErrWriter)

	for _, summary := range summaries {
		fmt.Fprintln(out, summary)
	}

	return nil
}

func runFile(ctx context.Context, backtestEngine engine.Engine, def strategy.StrategyDefinition, overrides types.ParameterValues, file string, cmd *cli.Command, format string) (string, error) {
	source, err := datasource.NewPriceSource(file,
		datasource.WithDateRange(optionalDate(cmd.String("start")), optionalDate(cmd.String("end"))),
	)
	if err != nil {
		return "", err
	}

	rep, err := backtestSource(ctx, backtestEngine, def, overrides, source, file)
	if err != nil {
		return "", err
	}

	if output := cmd.String("output"); output != "" {
		dataName := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

		path := filepath.Join(output, dataName, rep.FileName(format))
		if err := rep.Write(path); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%s\n%s", titleStyle.Render(file), rep.Summary()), nil
}

// backtestSource runs def over the series loaded from source and reports it under dataPath.
func backtestSource(ctx context.Context, backtestEngine engine.Engine, def strategy.StrategyDefinition, overrides types.ParameterValues, source datasource.PriceSource, dataPath string) (report.Report, error) {
	series, err := source.Load(ctx)
	if err != nil {
		return report.Report{}, err
	}

	result, err := backtestEngine.Run(ctx, series, def, overrides)
	if err != nil {
		return report.Report{}, err
	}

	return report.NewReport(def, strategy.DefaultParameters(def).Merge(overrides), result, report.WithDataPath(dataPath)), nil
}

func generateAction(_ context.Context, cmd *cli.Command) error {
	config := mocks.DefaultConfig()
	config.Days = int(cmd.Int("days"))
	config.EndDate = cmd.Timestamp("end")

	series := mocks.NewDataGenerator(int64(cmd.Int("seed"))).Generate(config)

	output := cmd.String("output")
	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	var err error

	switch strings.ToLower(filepath.Ext(output)) {
	case ".csv":
		err = datasource.WriteCSV(output, series)
	case ".parquet":
		err = datasource.WriteParquet(output, series)
	default:
		err = errors.Newf(errors.ErrCodeUnsupportedDataSource, "unsupported output format: %s", filepath.Ext(output))
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Generated %d prices at %s\n", len(series), output)

	return nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	backtestEngine, err := newEngine(cmd.String("config"), log)
	if err != nil {
		return err
	}

	server := api.NewServer(strategy.NewRegistry(), backtestEngine, log)
	if err := server.Start(cmd.String("addr")); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Serving on %s\n", server.Address())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	return server.Stop()
}
