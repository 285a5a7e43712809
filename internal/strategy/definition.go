package strategy

import (
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/runtime"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// CustomTypePrefix prefixes the type of every strategy registered by a host at runtime.
const CustomTypePrefix = "CUSTOM_"

// Parameter describes one numeric strategy parameter. Bounds are advisory only;
// the engine never enforces them.
type Parameter struct {
	// Name is the display name, e.g. "Short SMA Period".
	Name string `json:"name" yaml:"name" validate:"required"`
	// Key identifies the parameter within its strategy, e.g. "shortPeriod".
	Key     string                   `json:"key" yaml:"key" validate:"required"`
	Default float64                  `json:"default" yaml:"default"`
	Min     optional.Option[float64] `json:"min,omitempty" yaml:"-"`
	Max     optional.Option[float64] `json:"max,omitempty" yaml:"-"`
}

// StrategyDefinition is an immutable description of a strategy. A nil Runtime means the
// engine applies its built-in moving average crossover rule.
type StrategyDefinition struct {
	Type        string                  `json:"type" yaml:"type" validate:"required"`
	Name        string                  `json:"name" yaml:"name" validate:"required"`
	Description string                  `json:"description" yaml:"description"`
	Params      []Parameter             `json:"params" yaml:"params" validate:"unique=Key,dive"`
	Runtime     runtime.StrategyRuntime `json:"-" yaml:"-" validate:"-"`
}

// IsCustom reports whether the definition carries its own strategy body.
func (d StrategyDefinition) IsCustom() bool {
	return d.Runtime != nil
}

// DefaultParameters maps every parameter key of def to its default value.
// A fresh mapping is returned on every call.
func DefaultParameters(def StrategyDefinition) types.ParameterValues {
	params := make(types.ParameterValues, len(def.Params))
	for _, p := range def.Params {
		params[p.Key] = p.Default
	}

	return params
}

// NewCustomStrategyType returns a unique type for a strategy registered at runtime.
func NewCustomStrategyType() string {
	return CustomTypePrefix + uuid.NewString()
}

// NewParameter builds a parameter with both bounds set.
func NewParameter(name, key string, defaultValue, minValue, maxValue float64) Parameter {
	return Parameter{
		Name:    name,
		Key:     key,
		Default: defaultValue,
		Min:     optional.Some(minValue),
		Max:     optional.Some(maxValue),
	}
}

func cloneDefinition(def StrategyDefinition) StrategyDefinition {
	clone := def
	clone.Params = make([]Parameter, len(def.Params))
	copy(clone.Params, def.Params)

	return clone
}
