package functions

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compileSchema turns a parameter schema map into a validator. With
// assertFormat, formats such as "date" are checked, not just annotated.
func compileSchema(name Name, params map[string]any, assertFormat bool) (*jsonschema.Schema, error) {
	if params == nil {
		return nil, nil
	}
	// Round-trip through JSON so the compiler sees plain decoded values
	// ([]any rather than []string, json.Number rather than int).
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	url := "mem://functions/" + string(name) + ".json"
	c := jsonschema.NewCompiler()
	if assertFormat {
		c.AssertFormat()
	}
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
