// Package registry implements a minimal OCI/Docker distribution client:
// bearer-token auth, manifest/index fetch, platform selection, and a
// content-addressed blob downloader.
package registry

import (
	"fmt"

	ggcrtypes "github.com/google/go-containerregistry/pkg/v1/types"

	"github.com/raptorforge/raptor/digest"
)

// Media type constants used for Accept-header negotiation and manifest
// mediaType dispatch. Reused from go-containerregistry's types package
// rather than hand-rolled strings, since it already enumerates every OCI and
// Docker v2 alias this client needs to recognize.
const (
	MediaTypeOCIManifest = string(ggcrtypes.OCIManifestSchema1)
	MediaTypeOCIIndex    = string(ggcrtypes.OCIImageIndex)
	MediaTypeDockerV2    = string(ggcrtypes.DockerManifestSchema2)
	MediaTypeDockerList  = string(ggcrtypes.DockerManifestList)
)

// AcceptHeader lists every manifest media type this client understands, in
// the order registries should prefer when multiple are available.
var AcceptHeader = fmt.Sprintf("%s,%s,%s,%s",
	MediaTypeOCIIndex, MediaTypeOCIManifest, MediaTypeDockerList, MediaTypeDockerV2)

// TagsList is the response of GET /v2/<name>/tags/list.
type TagsList struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// Platform identifies the OS/architecture a manifest entry targets.
type Platform struct {
	Architecture string   `json:"architecture"`
	OS           string   `json:"os"`
	OSVersion    string   `json:"os.version,omitempty"`
	OSFeatures   []string `json:"os.features,omitempty"`
	Variant      string   `json:"variant,omitempty"`
	Features     []string `json:"features,omitempty"`
}

// ManifestRef is one entry of an image index: a pointer to a
// platform-specific manifest.
type ManifestRef struct {
	Annotations  map[string]string `json:"annotations,omitempty"`
	Digest       digest.Digest     `json:"digest"`
	MediaType    string            `json:"mediaType"`
	Platform     Platform          `json:"platform"`
	Size         int64             `json:"size"`
	ArtifactType string            `json:"artifactType,omitempty"`
}

// Index is a multi-platform image index ("manifest list").
type Index struct {
	Manifests     []ManifestRef `json:"manifests"`
	MediaType     string        `json:"mediaType"`
	SchemaVersion int           `json:"schemaVersion"`
}

// ErrManifestNotFound is returned when no manifest in an index matches a
// requested platform.
type ErrManifestNotFound struct {
	OS, Arch string
}

func (e *ErrManifestNotFound) Error() string {
	return fmt.Sprintf("no manifest for platform %s/%s", e.OS, e.Arch)
}

// Select returns the digest of the manifest matching the given platform.
func (idx Index) Select(os, arch string) (digest.Digest, error) {
	for _, m := range idx.Manifests {
		if m.Platform.OS == os && m.Platform.Architecture == arch {
			return m.Digest, nil
		}
	}
	return digest.Digest{}, &ErrManifestNotFound{OS: os, Arch: arch}
}

// Layer is one entry of a single-platform manifest's layer list (or its
// config blob).
type Layer struct {
	Data        string            `json:"data,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	Digest      digest.Digest     `json:"digest"`
	MediaType   string            `json:"mediaType"`
	Size        int64             `json:"size"`
}

// Manifest is a single-platform image manifest: a config blob plus an
// ordered list of layer blobs.
type Manifest struct {
	Config        Layer   `json:"config"`
	Layers        []Layer `json:"layers"`
	MediaType     string  `json:"mediaType"`
	SchemaVersion int     `json:"schemaVersion"`
}
