package build

import (
	"path/filepath"

	"github.com/raptorforge/raptor/recipe"
	"github.com/raptorforge/raptor/template"
)

// sourcePaths collects the external files prog's COPY, RENDER, and
// INCLUDE instructions read from, resolved relative to the statement's
// own origin file, for the cache hasher to watch. An INCLUDE's target
// file still needs its own entry here even though template.Loader
// already splices its statements in place: the hash is computed over
// prog.Statements as already-expanded content, but sourcePaths also
// feeds the mtime-based staleness check (cmd/raptor's Make-style run-job
// check), which wants to notice an edited .rinc file directly rather
// than through whatever it happened to expand into.
// SourcePaths is the exported form of sourcePaths, for callers (such as
// a Make-style staleness check) that need a program's external source
// files without going through the cache hasher.
func SourcePaths(loader *template.Loader, prog *template.Program) []string {
	return sourcePaths(loader, prog)
}

func sourcePaths(loader *template.Loader, prog *template.Program) []string {
	seen := map[string]struct{}{}
	var out []string

	addRel := func(origin recipe.Origin, path string) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(origin.Path), path)
		}
		addResolved(seen, &out, path)
	}

	for _, stmt := range prog.Statements {
		switch inst := stmt.Inst.(type) {
		case recipe.InstCopy:
			for _, src := range inst.Srcs {
				addRel(stmt.Origin, src)
			}
		case recipe.InstRender:
			addRel(stmt.Origin, inst.Src)
		case recipe.InstInclude:
			path, err := loader.ResolveInclude(inst.Src, stmt.Origin.Path)
			if err != nil {
				continue
			}
			addResolved(seen, &out, path)
		}
	}

	return out
}

func addResolved(seen map[string]struct{}, out *[]string, path string) {
	if _, ok := seen[path]; ok {
		return
	}
	seen[path] = struct{}{}
	*out = append(*out, path)
}
