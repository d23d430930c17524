// Package cache implements the deterministic content hash that identifies
// a built layer, and the LayerInfo naming scheme derived from it.
package cache

import (
	"encoding/binary"
	"hash/fnv"
	"os"
	"sort"
	"syscall"

	"github.com/raptorforge/raptor/recipe"
)

// ComputeKey hashes a layer's identity: its parent layer's own key (if
// any), every statement in its program, and the ctime of every external
// file the program depends on (COPY sources, RENDER templates, INCLUDE
// targets). Sorting a copy of sourcePaths here before hashing is what
// makes the result independent of traversal order.
func ComputeKey(fromKey *uint64, statements []recipe.Statement, sourcePaths []string) (uint64, error) {
	h := fnv.New64a()

	if fromKey != nil {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], *fromKey)
		h.Write(buf[:])
	}

	for _, stmt := range statements {
		h.Write([]byte(stmt.Inst.Name()))
		h.Write([]byte(stmt.Inst.String()))
	}

	sorted := append([]string(nil), sourcePaths...)
	sort.Strings(sorted)

	for _, path := range sorted {
		sec, nsec, err := ctime(path)
		if err != nil {
			return 0, err
		}
		var buf [16]byte
		binary.BigEndian.PutUint64(buf[0:8], uint64(sec))
		binary.BigEndian.PutUint64(buf[8:16], uint64(nsec))
		h.Write(buf[:])
	}

	return h.Sum64(), nil
}

// ctime returns a file's inode change time, the same signal the original
// hasher uses instead of mtime (mtime can be rewound by tools that restore
// timestamps; ctime can't be forged without root).
func ctime(path string) (sec, nsec int64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, nil
	}
	return int64(stat.Ctim.Sec), int64(stat.Ctim.Nsec), nil
}
