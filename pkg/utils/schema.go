// Package utils holds small helpers shared across the public surface.
package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaFor reflects a JSON schema from a config struct, for editor
// integration and config validation tooling.
func SchemaFor(v any) (string, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(v)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
