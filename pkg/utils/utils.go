package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaJSON renders schema as indented JSON.
func SchemaJSON(schema *jsonschema.Schema) (string, error) {
	jsonSchemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
