package engine

import (
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/rxtech-lab/argo-backtest/pkg/utils"
)

const (
	defaultLogLevel        = "info"
	defaultStrategyTimeout = 30 * time.Second
)

type BacktestEngineV1Config struct {
	LogLevel             string        `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error" jsonschema:"title=Log Level,description=Minimum level of engine log entries,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	StrategyTimeout      time.Duration `yaml:"strategy_timeout" json:"strategy_timeout" validate:"gte=0" jsonschema:"title=Strategy Timeout,description=Maximum run time of a custom strategy body such as 30s; 0 disables the limit"`
	WasmMemoryLimitPages uint32        `yaml:"wasm_memory_limit_pages" json:"wasm_memory_limit_pages" validate:"lte=65536" jsonschema:"title=WASM Memory Limit,description=Maximum linear memory of a WASM strategy in 64KiB pages; 0 keeps the runtime default,minimum=0,maximum=65536"`
}

// Validate checks the field constraints of the config.
func (c BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest engine config", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(time.Duration(0)) {
				return &jsonschema.Schema{
					Type:    "string",
					Pattern: `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	return utils.SchemaJSON(schema)
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		LogLevel:             defaultLogLevel,
		StrategyTimeout:      defaultStrategyTimeout,
		WasmMemoryLimitPages: 0,
	}
}
