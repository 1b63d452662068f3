// Package bundle ships the static fallback dataset served before the first
// successful sync or when the persistent tier holds nothing usable.
package bundle

import (
	"embed"
	"fmt"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
)

//go:embed data/*.json
var files embed.FS

// Load returns the bundled JSON array for name.
func Load(name catalog.CollectionName) ([]byte, error) {
	if !name.IsValid() {
		return nil, fmt.Errorf("bundle: unknown collection %q", name)
	}
	data, err := files.ReadFile("data/" + string(name) + ".json")
	if err != nil {
		return nil, fmt.Errorf("bundle: read %s: %w", name, err)
	}
	return data, nil
}
