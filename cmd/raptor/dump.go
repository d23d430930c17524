package main

import (
	"fmt"

	"github.com/raptorforge/raptor/plan"
)

// DumpCmd plans every target without building anything and prints the
// resulting job order, one "<hash> <job>" line per node.
type DumpCmd struct {
	Targets []string `arg:"" help:"Recipe names, rule-file job names, or %group names"`
}

func (c *DumpCmd) Run(g *Globals) error {
	b := g.newBuilder()
	rules := g.loadRules()

	p := plan.NewPlanner(b, rules)
	for _, target := range c.Targets {
		if err := addTarget(p, rules, target); err != nil {
			return fmt.Errorf("planning %q: %w", target, err)
		}
	}

	order, jobs, err := p.Plan()
	if err != nil {
		return err
	}

	for _, key := range order {
		fmt.Printf("%016X %s\n", key, jobs[key].String())
	}
	return nil
}
