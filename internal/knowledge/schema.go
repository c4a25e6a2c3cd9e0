// internal/knowledge/schema.go
package knowledge

// documentSchema is the JSON Schema every knowledge-base document must
// satisfy before it is unmarshalled.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["categories"],
  "properties": {
    "version": {"type": "string"},
    "categories": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["name"],
          "properties": {
            "name": {"type": "string", "minLength": 1},
            "weight": {"type": "integer", "minimum": 1}
          },
          "additionalProperties": false
        }
      }
    }
  },
  "additionalProperties": false
}`
