package build

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/raptorforge/raptor/runner"
)

// metadataSuffix names the sidecar JSON file recording a layer's
// ENTRYPOINT/CMD, written alongside (not inside) the layer's work
// directory so "raptor show" can read it without mounting the layer.
const metadataSuffix = ".json"

// writeMetadata writes meta as workPath's sidecar JSON file. Called
// before the atomic rename from work_path to done_path, so the sidecar
// and its layer appear together once the rename completes (the sidecar
// itself is renamed alongside it by buildLayer via the
// "<path>.json" naming convention).
func writeMetadata(workPath string, meta runner.Metadata) error {
	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding layer metadata: %w", err)
	}
	return os.WriteFile(workPath+metadataSuffix, encoded, 0o644)
}

// MetadataPath returns the sidecar JSON path for a built layer's
// done-path.
func MetadataPath(donePath string) string {
	return donePath + metadataSuffix
}

// ReadMetadata reads a built layer's ENTRYPOINT/CMD sidecar, for
// "raptor show".
func ReadMetadata(donePath string) (runner.Metadata, error) {
	var meta runner.Metadata
	data, err := os.ReadFile(MetadataPath(donePath))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("decoding layer metadata: %w", err)
	}
	return meta, nil
}
