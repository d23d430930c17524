// Package module implements dotted module names used by FROM/INCLUDE/MOUNT
// to reference other recipes, and the resolution roots that turn a name
// into a file on disk.
package module

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Name is a dotted module reference, optionally rooted at a named package
// ("$root.a.b") instead of the current resolution context ("a.b").
type Name struct {
	root  string // empty when unrooted
	parts []string
}

// New builds a Name from already-split parts, recognizing a "$root" first
// part the way the DSL's lexer hands it over.
func New(parts []string) Name {
	if len(parts) > 0 && strings.HasPrefix(parts[0], "$") {
		return Name{root: parts[0][1:], parts: append([]string{}, parts[1:]...)}
	}
	return Name{parts: append([]string{}, parts...)}
}

// Parse splits a dotted string like "$pkg.a.b" or "a.b" into a Name.
func Parse(s string) Name {
	if s == "" {
		return Name{}
	}
	return New(strings.Split(s, "."))
}

// Root returns the named package root, and whether one was given.
func (n Name) Root() (string, bool) {
	if n.root == "" {
		return "", false
	}
	return n.root, true
}

// Parts returns the dotted name components after any root prefix.
func (n Name) Parts() []string {
	return n.parts
}

// String renders the dotted form without the root prefix, matching the
// original's Display impl (root names are a resolution detail, not part of
// the printed identity).
func (n Name) String() string {
	return strings.Join(n.parts, ".")
}

// IsEmpty reports whether the name has no components at all.
func (n Name) IsEmpty() bool {
	return len(n.parts) == 0
}

// ProgramPath returns the on-disk recipe path this name would resolve to,
// relative to whatever root it's resolved against ("a.b" -> "a/b.rapt").
func (n Name) ProgramPath() string {
	return filepath.Join(n.parts...) + ".rapt"
}

// IncludePath is ProgramPath's counterpart for INCLUDE targets
// ("a.b" -> "a/b.rinc").
func (n Name) IncludePath() string {
	return filepath.Join(n.parts...) + ".rinc"
}

// ErrPackageNotFound is returned when a Name's root doesn't match any
// registered package.
type ErrPackageNotFound struct {
	Root string
}

func (e *ErrPackageNotFound) Error() string {
	return fmt.Sprintf("no package root registered for %q", e.Root)
}
