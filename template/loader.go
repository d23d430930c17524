package template

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/raptorforge/raptor/module"
	"github.com/raptorforge/raptor/recipe"
)

// FileReader abstracts reading recipe source, so tests can substitute an
// in-memory filesystem instead of touching disk.
type FileReader interface {
	ReadFile(path string) (string, error)
}

// OSFileReader reads recipe source from the real filesystem.
type OSFileReader struct{}

func (OSFileReader) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

// Program is a fully INCLUDE-expanded statement list, ready for the
// builder to walk.
type Program struct {
	Path       string
	Statements []recipe.Statement
}

// ErrIncludeDepth is returned when INCLUDE nesting exceeds
// recipe.MaxIncludeDepth, guarding against include cycles.
type ErrIncludeDepth struct {
	Path string
}

func (e *ErrIncludeDepth) Error() string {
	return fmt.Sprintf("include depth exceeded while loading %q (possible include cycle)", e.Path)
}

// Loader parses recipe files and expands their INCLUDE statements, keeping
// each INCLUDE statement in the program directly ahead of the statements
// it expands to, and resolving each INCLUDE's module name against Packages (for
// "$root"-prefixed names) or the including file's own directory otherwise.
type Loader struct {
	Reader   FileReader
	Packages map[string]string

	parseCache map[string][]recipe.Statement
}

// NewLoader creates a Loader backed by reader, with pkgs mapping package
// roots ("$pkgs.foo...") to their base directories.
func NewLoader(reader FileReader, pkgs map[string]string) *Loader {
	if reader == nil {
		reader = OSFileReader{}
	}
	return &Loader{Reader: reader, Packages: pkgs, parseCache: map[string][]recipe.Statement{}}
}

// parse reads and parses path, memoizing the raw (unexpanded) statement
// list: parsing is pure with respect to template context, so the same file
// read from two different INCLUDE call sites with different arguments
// parses identically and only differs once Lookup arguments are resolved.
func (l *Loader) parse(path string) ([]recipe.Statement, error) {
	if cached, ok := l.parseCache[path]; ok {
		return cached, nil
	}

	src, err := l.Reader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	stmts, err := recipe.Parse(path, src)
	if err != nil {
		return nil, err
	}

	l.parseCache[path] = stmts
	return stmts, nil
}

// Load parses path and recursively expands every INCLUDE it contains,
// resolving Lookup arguments against ctx.
func (l *Loader) Load(path string, ctx Context) (*Program, error) {
	stmts, err := l.expand(path, ctx, 0)
	if err != nil {
		return nil, err
	}
	return &Program{Path: path, Statements: stmts}, nil
}

func (l *Loader) expand(path string, ctx Context, depth int) ([]recipe.Statement, error) {
	if depth > recipe.MaxIncludeDepth {
		return nil, &ErrIncludeDepth{Path: path}
	}

	stmts, err := l.parse(path)
	if err != nil {
		return nil, err
	}

	var out []recipe.Statement
	for _, stmt := range stmts {
		inc, ok := stmt.Inst.(recipe.InstInclude)
		if !ok {
			out = append(out, stmt)
			continue
		}

		childPath, err := l.resolveInclude(inc.Src, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stmt.Origin, err)
		}

		childCtx, err := ctx.Child(inc.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stmt.Origin, err)
		}

		expanded, err := l.expand(childPath, childCtx, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
		out = append(out, expanded...)
	}

	return out, nil
}

func (l *Loader) resolveInclude(name module.Name, fromPath string) (string, error) {
	if _, ok := name.Root(); ok {
		return module.PackageRoot{Packages: l.Packages}.Resolve(name, "rinc")
	}
	base := filepath.Dir(fromPath)
	return module.RelativeRoot{BaseDir: base}.Resolve(name, "rinc")
}

// ResolveInclude is the exported form of resolveInclude, for callers
// (such as build.sourcePaths) that need an INCLUDE's resolved target
// path without driving a full expansion.
func (l *Loader) ResolveInclude(name module.Name, fromPath string) (string, error) {
	return l.resolveInclude(name, fromPath)
}

// LoadFrom resolves a FROM instruction's recipe module name relative to
// fromPath (the referencing recipe's own path) and loads it fresh, with
// an empty Context: a FROM target is a top-level recipe in its own
// right, not a template fragment inheriting the referencing recipe's
// bound arguments.
func (l *Loader) LoadFrom(name module.Name, fromPath string) (*Program, error) {
	path, err := l.resolveFrom(name, fromPath)
	if err != nil {
		return nil, err
	}
	return l.Load(path, Context{})
}

func (l *Loader) resolveFrom(name module.Name, fromPath string) (string, error) {
	if _, ok := name.Root(); ok {
		return module.PackageRoot{Packages: l.Packages}.Resolve(name, "rapt")
	}
	base := filepath.Dir(fromPath)
	return module.RelativeRoot{BaseDir: base}.Resolve(name, "rapt")
}
