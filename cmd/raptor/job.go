package main

import (
	"fmt"

	"github.com/raptorforge/raptor/build"
	"github.com/raptorforge/raptor/cache"
	"github.com/raptorforge/raptor/reference"
)

// JobCmd is the hidden re-exec entrypoint for building exactly one
// planned Build node in its own OS process. Its parent (the wave
// scheduler) identifies the node by its LayerInfo ID plus either the
// resolved recipe path or a Docker reference string, and passes the
// done-paths of its already-built dependency layers — enough to
// reconstruct the Target and rebuild it without serializing any
// in-memory state across the process boundary.
type JobCmd struct {
	ID     string   `arg:"" help:"LayerInfo ID (\"name-HASHHEX\") of the layer to build"`
	Path   string   `long:"path" help:"Resolved recipe file path, for a recipe layer"`
	Docker string   `long:"docker" help:"Docker image reference, for a base layer"`
	Layer  []string `long:"layer" help:"Done-path of a dependency layer, lowest first"`
}

func (c *JobCmd) Run(g *Globals) error {
	info, err := cache.ParseLayerInfo(c.ID)
	if err != nil {
		return err
	}

	b := g.newBuilder()

	var target build.Target
	switch {
	case c.Docker != "":
		ref, err := reference.Parse(c.Docker)
		if err != nil {
			return fmt.Errorf("parsing docker reference %q: %w", c.Docker, err)
		}
		target = build.Target{Docker: &ref}
	case c.Path != "":
		prog, err := b.LoadPath(c.Path)
		if err != nil {
			return fmt.Errorf("loading %q: %w", c.Path, err)
		}
		target = build.Target{Program: prog}
	default:
		return fmt.Errorf("__job requires either --docker or --path")
	}

	_, err = b.BuildOne(target, c.Layer, info)
	return err
}
