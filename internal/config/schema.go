package config

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// callConfigSchema validates the JSON shape of a call configuration
// submitted to the CLI or an external API shim, mirroring Config's fields
// (spec.md §3: fuel, timeout_ms, capabilities).
const callConfigSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"fuel": {"type": "integer", "minimum": 1, "maximum": 100000000},
		"timeout_ms": {"type": "integer", "minimum": 0},
		"capabilities": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"kind": {"type": "string"},
					"name": {"type": "string"}
				},
				"required": ["kind"]
			}
		}
	},
	"additionalProperties": false
}`

// CallConfigValidator validates call-configuration JSON documents against
// callConfigSchema before they reach the Execution Manager.
type CallConfigValidator struct {
	schema *jsonschema.Schema
}

// NewCallConfigValidator compiles callConfigSchema once for reuse.
func NewCallConfigValidator() (*CallConfigValidator, error) {
	compiler := jsonschema.NewCompiler()
	const resource = "mantle://call-config.schema.json"
	if err := compiler.AddResource(resource, bytes.NewReader([]byte(callConfigSchema))); err != nil {
		return nil, fmt.Errorf("add call config schema: %w", err)
	}
	schema, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compile call config schema: %w", err)
	}
	return &CallConfigValidator{schema: schema}, nil
}

// Validate checks doc (already unmarshalled into any, e.g. via
// encoding/json.Unmarshal into interface{}) against the schema.
func (v *CallConfigValidator) Validate(doc any) error {
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("call configuration: %w", err)
	}
	return nil
}
