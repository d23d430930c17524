// Package runner executes a flattened recipe program inside a running
// sandbox: resolving MOUNT instructions into nspawn bind/overlay specs
// before launch, then dispatching every other instruction over the
// sandbox RPC client one statement at a time.
package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raptorforge/raptor/recipe"
)

// BindSpec is one nspawn --bind/--bind-ro argument a MOUNT instruction
// contributes to the sandbox launch.
type BindSpec struct {
	Src, Dst string
	ReadOnly bool
}

// OverlaySpec is one nspawn --overlay argument: a read-only layer stack
// presented at Dst inside the sandbox.
type OverlaySpec struct {
	Layers []string
	Dst    string
}

// LayerBuilder builds the named recipe (a MOUNT --layers/--overlay
// source) into its full layer stack, lowest layer first, returning each
// layer's done_path. It is satisfied by build.Builder; defined here as
// an interface so this package never imports build (which itself calls
// into runner to execute a layer's statements).
type LayerBuilder interface {
	BuildLayers(name string) ([]string, error)
}

// mountsInfo is the raptor.json manifest a --layers MOUNT writes
// alongside the layers it bind-mounts, so in-sandbox tooling can
// enumerate what was mounted without parsing directory listings.
type mountsInfo struct {
	Targets []string            `json:"targets"`
	Layers  map[string][]string `json:"layers"`
}

// ResolveMounts walks statements for MOUNT instructions and turns each
// into bind or overlay specs, building any referenced recipe via
// builder. tempDir is where per-mount raptor.json manifests are staged
// before being bind-mounted in (MOUNT --layers only).
func ResolveMounts(statements []recipe.Statement, builder LayerBuilder, tempDir string) ([]BindSpec, []OverlaySpec, error) {
	var binds []BindSpec
	var overlays []OverlaySpec

	for _, stmt := range statements {
		mount, ok := stmt.Inst.(recipe.InstMount)
		if !ok {
			continue
		}

		switch mount.Mode {
		case recipe.MountSimple:
			binds = append(binds, BindSpec{Src: mount.Source, Dst: mount.Dest})

		case recipe.MountLayers:
			layers, err := builder.BuildLayers(mount.Source)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: building MOUNT --layers target %q: %w", stmt.Origin, mount.Source, err)
			}

			info := mountsInfo{Targets: []string{mount.Source}, Layers: map[string][]string{}}
			for _, layer := range layers {
				name := filepath.Base(layer)
				info.Layers[mount.Source] = append(info.Layers[mount.Source], name)
				binds = append(binds, BindSpec{Src: layer, Dst: filepath.Join(mount.Dest, name), ReadOnly: true})
			}

			manifest, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return nil, nil, fmt.Errorf("%s: marshaling mount manifest: %w", stmt.Origin, err)
			}
			listFile := filepath.Join(tempDir, "mounts-"+sanitizeMountName(mount.Source))
			if err := os.WriteFile(listFile, append(manifest, '\n'), 0o644); err != nil {
				return nil, nil, fmt.Errorf("%s: writing mount manifest: %w", stmt.Origin, err)
			}
			binds = append(binds, BindSpec{Src: listFile, Dst: filepath.Join(mount.Dest, "raptor.json"), ReadOnly: true})

		case recipe.MountOverlay:
			layers, err := builder.BuildLayers(mount.Source)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: building MOUNT --overlay target %q: %w", stmt.Origin, mount.Source, err)
			}
			overlays = append(overlays, OverlaySpec{Layers: layers, Dst: mount.Dest})
		}
	}

	return binds, overlays, nil
}

func sanitizeMountName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '/' || r == ':' {
			out = append(out, '-')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
