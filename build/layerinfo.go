package build

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"

	"github.com/raptorforge/raptor/cache"
	"github.com/raptorforge/raptor/reference"
)

// layerInfo computes the LayerInfo a Target builds to, chaining in
// parentKey (the preceding stack entry's own key, or nil at the root)
// so each layer's identity depends on everything beneath it.
func (b *Builder) layerInfo(target Target, parentKey *uint64) (cache.LayerInfo, uint64, error) {
	if target.Docker != nil {
		key := dockerKey(*target.Docker)
		return cache.LayerInfo{Name: safeDockerName(*target.Docker), Hash: key}, key, nil
	}

	prog := target.Program
	name := strings.TrimSuffix(filepath.Base(prog.Path), filepath.Ext(prog.Path))

	key, err := cache.ComputeKey(parentKey, prog.Statements, sourcePaths(b.Loader, prog))
	if err != nil {
		return cache.LayerInfo{}, 0, fmt.Errorf("hashing %s: %w", prog.Path, err)
	}

	return cache.LayerInfo{Name: name, Hash: key}, key, nil
}

// dockerKey hashes a Docker/OCI reference's canonical form. The original
// builder used SipHasher13 over the whole parsed source struct; fnv is
// used here instead purely for consistency with cache.ComputeKey's own
// choice (see DESIGN.md), not because SipHasher13 is unavailable.
func dockerKey(ref reference.Reference) uint64 {
	h := fnv.New64a()
	h.Write([]byte(ref.String()))
	return h.Sum64()
}

// safeDockerName turns a reference into a filesystem-safe layer name,
// substituting the slashes and colons a repository/tag can contain.
func safeDockerName(ref reference.Reference) string {
	repl := strings.NewReplacer("/", "-", ":", "-", "@", "-")
	return repl.Replace(ref.String())
}
