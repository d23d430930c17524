package build

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PackageMeta is a recipe directory's optional sidecar declaring OCI-style
// labels to attach to every layer built from it. Unlike build metadata
// (ENTRYPOINT/CMD, derived from the recipe itself), labels are free-form
// and rarely change per build, so they live in their own small file next
// to the recipe rather than as recipe statements.
type PackageMeta struct {
	Labels map[string]string `yaml:"labels"`
}

// packageMetaName is the sidecar file a recipe directory may carry.
const packageMetaName = "package.yaml"

// loadPackageMeta reads "package.yaml" next to a recipe file, returning a
// zero-value PackageMeta (not an error) when the recipe directory simply
// doesn't have one.
func loadPackageMeta(recipePath string) (PackageMeta, error) {
	path := filepath.Join(filepath.Dir(recipePath), packageMetaName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return PackageMeta{}, nil
	}
	if err != nil {
		return PackageMeta{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var meta PackageMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return PackageMeta{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return meta, nil
}
