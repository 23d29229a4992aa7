package bird

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// searchSchema constrains the JSON the Bird CLI may hand us before we
// unmarshal it. The CLI is an external binary, so its output is untrusted.
const searchSchema = `{
  "type": "object",
  "properties": {
    "items":  {"$ref": "#/definitions/tweets"},
    "tweets": {"$ref": "#/definitions/tweets"}
  },
  "additionalProperties": true,
  "definitions": {
    "tweets": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id":         {"type": "string"},
          "author":     {"type": "string"},
          "text":       {"type": "string"},
          "created_at": {"type": "string"},
          "url":        {"type": "string"},
          "likes":      {"type": "integer"},
          "reposts":    {"type": "integer"},
          "replies":    {"type": "integer"}
        },
        "required": ["text"]
      }
    }
  }
}`

var searchSchemaLoader = gojsonschema.NewStringLoader(searchSchema)

func validateSearchOutput(out []byte) error {
	result, err := gojsonschema.Validate(searchSchemaLoader, gojsonschema.NewBytesLoader(out))
	if err != nil {
		return fmt.Errorf("bird search output is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("bird search output failed validation: %s", strings.Join(problems, "; "))
}
