// pkg/registry/schema.go
package registry

// BundleRegistry is the catalog of grammar bundles a deployment knows about.
type BundleRegistry struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Bundles     []Bundle `json:"bundles"`
}

// Bundle names one grammar/knowledge-base file pair with its metadata.
type Bundle struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"displayName"`
	Description   string   `json:"description"`
	Version       string   `json:"version"`
	GrammarFile   string   `json:"grammarFile"`
	KnowledgeFile string   `json:"knowledgeFile"`
	StartCategory string   `json:"startCategory"`
	Tags          []string `json:"tags"`
}

// registrySchema validates a registry document before unmarshalling.
const registrySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "bundles"],
  "properties": {
    "version": {"type": "string"},
    "lastUpdated": {"type": "string"},
    "bundles": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "grammarFile", "knowledgeFile"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "displayName": {"type": "string"},
          "description": {"type": "string"},
          "version": {"type": "string"},
          "grammarFile": {"type": "string", "minLength": 1},
          "knowledgeFile": {"type": "string", "minLength": 1},
          "startCategory": {"type": "string"},
          "tags": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`
