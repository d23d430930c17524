package main

import (
	"fmt"
	"os"
)

// CheckCmd loads and stacks every target without building or running
// anything, reporting every resolution error it finds.
type CheckCmd struct {
	Targets []string `arg:"" help:"Recipe names to load and stack"`
}

func (c *CheckCmd) Run(g *Globals) error {
	b := g.newBuilder()

	failed := false
	for _, name := range c.Targets {
		prog, err := b.Load(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			failed = true
			continue
		}
		if _, err := b.Stack(prog); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			failed = true
			continue
		}
		fmt.Printf("%s: ok\n", name)
	}

	if failed {
		return fmt.Errorf("one or more targets failed to resolve")
	}
	return nil
}
