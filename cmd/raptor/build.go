package main

import (
	"fmt"
	"os"

	"github.com/raptorforge/raptor/build"
	"github.com/raptorforge/raptor/plan"
)

// BuildCmd builds one or more targets, each either a bare recipe module
// name, a rule file's named [run.<name>] job, or a "%group" fan-out.
type BuildCmd struct {
	Targets     []string `arg:"" help:"Recipe names, rule-file job names, or %group names"`
	Concurrency int      `long:"concurrency" default:"4" help:"Maximum jobs built in parallel"`
}

func (c *BuildCmd) Run(g *Globals) error {
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

	if g.NoAct {
		printer := build.NewPrintExecutor(os.Stderr)
		for _, key := range order {
			job := jobs[key]
			fmt.Fprintln(os.Stderr, job.String())
			if job.Build != nil {
				if err := printer.Run(job.Build.Target); err != nil {
					return err
				}
			}
		}
		return nil
	}

	return runPlan(g, order, jobs, p.Edges(), c.Concurrency)
}

// addTarget dispatches one CLI target the way the planner's own add()
// does: "%group" fans out a rule file's group, a name matching a
// [run.<name>] entry becomes a named run job, anything else is built as
// a bare recipe module name.
func addTarget(p *plan.Planner, rules *plan.Rules, target string) error {
	if len(target) > 0 && target[0] == '%' {
		return p.Add(target)
	}
	if rules != nil {
		if _, ok := rules.Run[target]; ok {
			return p.AddNamedRunJob(target)
		}
	}
	_, err := p.AddBuildJob(target)
	return err
}
