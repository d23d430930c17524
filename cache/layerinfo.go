package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// HashWidth is the fixed hex width a LayerInfo's hash is zero-padded to,
// so ID() strings are fixed-length and trivially parsed back via rsplit.
const HashWidth = 16

// LayerInfo names a built layer: its recipe name plus the content hash
// that identifies this particular build of it.
type LayerInfo struct {
	Name string
	Hash uint64
}

// HashHex is the zero-padded, uppercase hex rendering of Hash.
func (l LayerInfo) HashHex() string {
	return fmt.Sprintf("%0*X", HashWidth, l.Hash)
}

// ID is the on-disk identifier for this layer build: "name-HASHHEX".
func (l LayerInfo) ID() string {
	return l.Name + "-" + l.HashHex()
}

// WorkPath is where a build writes this layer while it is still in
// progress, renamed to DonePath() only once the build succeeds.
func (l LayerInfo) WorkPath() string {
	return "layers/build-" + l.ID()
}

// DonePath is where a completed layer lives, and what a later build with
// a matching cache key can skip straight to reusing.
func (l LayerInfo) DonePath() string {
	return "layers/" + l.ID()
}

// ErrParseLayerInfo is returned when a string doesn't have the
// "name-HASHHEX" shape ParseLayerInfo expects.
type ErrParseLayerInfo struct {
	Input string
}

func (e *ErrParseLayerInfo) Error() string {
	return fmt.Sprintf("invalid layer id %q: expected \"name-%d hex chars\"", e.Input, HashWidth)
}

// ParseLayerInfo parses the "name-HASHHEX" form ID() produces. The hash
// tail must be exactly HashWidth hex characters; a shorter or longer tail
// is rejected rather than silently truncated or zero-extended.
func ParseLayerInfo(s string) (LayerInfo, error) {
	idx := strings.LastIndex(s, "-")
	if idx < 0 {
		return LayerInfo{}, &ErrParseLayerInfo{Input: s}
	}
	name, tail := s[:idx], s[idx+1:]
	if len(tail) != HashWidth {
		return LayerInfo{}, &ErrParseLayerInfo{Input: s}
	}
	hash, err := strconv.ParseUint(tail, 16, 64)
	if err != nil {
		return LayerInfo{}, &ErrParseLayerInfo{Input: s}
	}
	return LayerInfo{Name: name, Hash: hash}, nil
}
