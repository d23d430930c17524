// Package template implements the recipe loader's INCLUDE expansion and the
// RENDER instruction's template engine contract.
package template

import (
	"fmt"

	"github.com/raptorforge/raptor/recipe"
)

// Context is the set of named values a RENDER or INCLUDE's Lookup arguments
// resolve against. Each INCLUDE creates a child Context for the included
// recipe, seeded from its own arguments rather than inheriting the
// parent's whole namespace, matching the original loader's "merge exported
// context" step: only what's explicitly passed crosses the INCLUDE
// boundary.
type Context map[string]any

// ErrUnresolvedLookup is returned when a Lookup's path isn't bound in the
// calling context.
type ErrUnresolvedLookup struct {
	Path string
}

func (e *ErrUnresolvedLookup) Error() string {
	return fmt.Sprintf("unresolved lookup %q", e.Path)
}

// Resolve turns a recipe.IncludeArgValue into a concrete value, chasing a
// Lookup through the calling context or returning a literal Value's string
// form.
func (c Context) Resolve(v recipe.IncludeArgValue) (any, error) {
	if v.Value != nil {
		return v.Value.String(), nil
	}
	if v.Lookup == nil {
		return nil, fmt.Errorf("template: include arg has neither value nor lookup")
	}

	cur := any(map[string]any(c))
	for i, part := range v.Lookup.Path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, &ErrUnresolvedLookup{Path: v.Lookup.String()}
		}
		next, ok := m[part]
		if !ok {
			return nil, &ErrUnresolvedLookup{Path: v.Lookup.String()}
		}
		if i == len(v.Lookup.Path)-1 {
			return next, nil
		}
		cur = next
	}
	return nil, &ErrUnresolvedLookup{Path: v.Lookup.String()}
}

// Child builds the Context an INCLUDE or RENDER instruction's own target
// sees, by resolving each of its arguments against the calling Context.
func (c Context) Child(args []recipe.IncludeArg) (Context, error) {
	out := make(Context, len(args))
	for _, a := range args {
		val, err := c.Resolve(a.Value)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", a.Name, err)
		}
		out[a.Name] = val
	}
	return out, nil
}
