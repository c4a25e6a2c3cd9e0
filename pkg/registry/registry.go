// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"command-generator/internal/common/errors"
)

// LoadRegistry reads and validates a bundle registry document. File paths
// inside the registry are resolved relative to the registry file itself.
func LoadRegistry(path string) (*BundleRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewRegistryNotFoundError(path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(registrySchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, errors.NewRegistryNotFoundError(path, err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, errors.NewConfigInvalidError("registry " + path + ": " + strings.Join(details, "; "))
	}

	var reg BundleRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, errors.NewRegistryNotFoundError(path, err)
	}

	base := filepath.Dir(path)
	for i := range reg.Bundles {
		reg.Bundles[i].GrammarFile = resolve(base, reg.Bundles[i].GrammarFile)
		reg.Bundles[i].KnowledgeFile = resolve(base, reg.Bundles[i].KnowledgeFile)
	}
	return &reg, nil
}

// Find returns the bundle with the given id.
func (r *BundleRegistry) Find(id string) (*Bundle, error) {
	for i := range r.Bundles {
		if r.Bundles[i].ID == id {
			return &r.Bundles[i], nil
		}
	}
	return nil, errors.NewBundleNotFoundError(id)
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
