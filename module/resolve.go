package module

import "path/filepath"

// Root resolves a module Name to a file path for a given extension
// ("rapt" for recipes, "rinc" for includes).
type Root interface {
	Resolve(name Name, ext string) (string, error)
}

// RelativeRoot resolves unrooted names against the directory containing
// the file that referenced them (FROM/INCLUDE/MOUNT resolved relative to
// the including recipe, per spec.md §4.7).
type RelativeRoot struct {
	BaseDir string
}

func (r RelativeRoot) Resolve(name Name, ext string) (string, error) {
	rel := nameToPath(name, ext)
	return filepath.Join(r.BaseDir, rel), nil
}

// AbsoluteRoot resolves every name against one fixed root directory,
// ignoring where the referencing file lives.
type AbsoluteRoot struct {
	Dir string
}

func (r AbsoluteRoot) Resolve(name Name, ext string) (string, error) {
	return filepath.Join(r.Dir, nameToPath(name, ext)), nil
}

// PackageRoot resolves rooted names ("$foo.a.b") against a table of named
// package directories, registered ahead of time (e.g. from CLI flags or a
// workspace manifest).
type PackageRoot struct {
	Packages map[string]string
}

func (r PackageRoot) Resolve(name Name, ext string) (string, error) {
	root, ok := name.Root()
	if !ok {
		return "", &ErrPackageNotFound{Root: "(unrooted)"}
	}
	dir, ok := r.Packages[root]
	if !ok {
		return "", &ErrPackageNotFound{Root: root}
	}
	return filepath.Join(dir, nameToPath(name, ext)), nil
}

func nameToPath(name Name, ext string) string {
	base := filepath.Join(name.Parts()...)
	switch ext {
	case "rinc":
		return base + ".rinc"
	default:
		return base + ".rapt"
	}
}

// Resolve picks PackageRoot when name carries a package root and
// RelativeRoot (against baseDir) otherwise; it never picks AbsoluteRoot.
func Resolve(name Name, baseDir string, packages map[string]string, ext string) (string, error) {
	if _, ok := name.Root(); ok {
		return PackageRoot{Packages: packages}.Resolve(name, ext)
	}
	return RelativeRoot{BaseDir: baseDir}.Resolve(name, ext)
}
