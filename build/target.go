// Package build implements the layer builder: resolving a recipe's FROM
// chain into an ordered stack of build targets, computing each target's
// cache key, and driving the sandbox to build whichever targets aren't
// already on disk.
package build

import (
	"fmt"

	"github.com/raptorforge/raptor/recipe"
	"github.com/raptorforge/raptor/reference"
	"github.com/raptorforge/raptor/template"
)

// Target is one entry in a build stack: either a recipe program built in
// the sandbox, or a Docker/OCI image pulled and extracted as a base
// layer. Exactly one field is set.
type Target struct {
	Program *template.Program
	Docker  *reference.Reference
}

func (t Target) String() string {
	if t.Docker != nil {
		return "docker://" + t.Docker.String()
	}
	if t.Program != nil {
		return t.Program.Path
	}
	return "(empty target)"
}

// findFrom returns the program's FROM instruction, if it has one. A
// program with no FROM statement is the root of its chain (it builds
// directly on an empty root, e.g. a from-scratch layer).
func findFrom(stmts []recipe.Statement) (recipe.InstFrom, bool) {
	for _, stmt := range stmts {
		if from, ok := stmt.Inst.(recipe.InstFrom); ok {
			return from, true
		}
	}
	return recipe.InstFrom{}, false
}

// stack walks prog's FROM chain and returns the full build stack, ordered
// root-first (the base of the chain is stacked[0], prog itself is last).
func (b *Builder) stack(prog *template.Program) ([]Target, error) {
	var data []Target

	next := prog
	for next != nil {
		data = append(data, Target{Program: next})

		from, ok := findFrom(next.Statements)
		if !ok {
			break
		}

		if from.From.Docker != "" {
			ref, err := reference.Parse(from.From.Docker)
			if err != nil {
				return nil, fmt.Errorf("parsing FROM docker source %q: %w", from.From.Docker, err)
			}
			data = append(data, Target{Docker: &ref})
			break
		}

		if from.From.Recipe == nil {
			return nil, fmt.Errorf("FROM statement has neither a recipe nor a docker source")
		}

		child, err := b.Loader.LoadFrom(*from.From.Recipe, next.Path)
		if err != nil {
			return nil, fmt.Errorf("loading FROM target %q: %w", from.From.Recipe, err)
		}
		next = child
	}

	reverseTargets(data)
	return data, nil
}

func reverseTargets(s []Target) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
