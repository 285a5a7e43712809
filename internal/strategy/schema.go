package strategy

import (
	"encoding/json"
	"strconv"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-backtest/pkg/utils"
)

// ParameterSchema describes the parameters of def as a JSON schema object, keeping the
// declaration order so forms can be rendered from it.
func ParameterSchema(def StrategyDefinition) *jsonschema.Schema {
	properties := jsonschema.NewProperties()

	for _, p := range def.Params {
		property := &jsonschema.Schema{
			Type:    "number",
			Title:   p.Name,
			Default: p.Default,
		}

		if p.Min.IsSome() {
			property.Minimum = jsonNumber(p.Min.Unwrap())
		}

		if p.Max.IsSome() {
			property.Maximum = jsonNumber(p.Max.Unwrap())
		}

		properties.Set(p.Key, property)
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		ID:          jsonschema.ID("urn:argo-backtest:strategy:" + def.Type),
		Title:       def.Name,
		Description: def.Description,
		Type:        "object",
		Properties:  properties,
	}
}

// ParameterSchemaJSON renders ParameterSchema as indented JSON.
func ParameterSchemaJSON(def StrategyDefinition) (string, error) {
	return utils.SchemaJSON(ParameterSchema(def))
}

func jsonNumber(v float64) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', -1, 64))
}
