package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/raptorforge/raptor/plan"
	"github.com/raptorforge/raptor/runner"
)

// runPlan executes a planned DAG wave by wave: every job whose
// dependencies are already done runs concurrently (via runner.
// RunParallel, one OS process per job), then the next wave of newly-
// ready jobs runs, until the whole plan is built. This is a batched
// approximation of the original's single continuous work-stealing
// frontier — Go's runner.RunParallel already schedules work within one
// wave, and edges only ever point from a node to nodes earlier in
// topological order, so no wave can stall on a dependency from a later
// wave.
func runPlan(g *Globals, order []uint64, jobs map[uint64]plan.Job, edges map[uint64][]uint64, concurrency int) error {
	done := make(map[uint64]bool, len(order))
	remaining := append([]uint64(nil), order...)

	for len(remaining) > 0 {
		var wave, rest []uint64
		for _, key := range remaining {
			if dependenciesSatisfied(edges[key], done) {
				wave = append(wave, key)
			} else {
				rest = append(rest, key)
			}
		}
		if len(wave) == 0 {
			return fmt.Errorf("plan scheduling stalled on an unresolved dependency")
		}

		results, err := runWave(g, wave, jobs, concurrency)
		if err != nil {
			return err
		}
		for i, key := range wave {
			if results[i].Err != nil {
				return fmt.Errorf("%s: %w", jobs[key].String(), results[i].Err)
			}
			done[key] = true
		}
		remaining = rest
	}

	return nil
}

func dependenciesSatisfied(deps []uint64, done map[uint64]bool) bool {
	for _, dep := range deps {
		if !done[dep] {
			return false
		}
	}
	return true
}

func runWave(g *Globals, wave []uint64, jobs map[uint64]plan.Job, concurrency int) ([]runner.JobResult, error) {
	rjobs := make([]runner.Job, len(wave))
	for i, key := range wave {
		rjobs[i] = runner.Job{Name: jobs[key].String(), Cmd: jobCommand(g, jobs[key])}
	}
	results, err := runner.RunParallel(context.Background(), rjobs, concurrency)
	for _, r := range results {
		if r.Output != "" {
			fmt.Fprintf(os.Stderr, "--- %s ---\n%s", r.Name, r.Output)
		}
	}
	return results, err
}

// jobCommand re-invokes this same binary as a child process for exactly
// one plan node, carrying just enough of that node's identity on the
// command line to rebuild it without the parent serializing an entire
// in-memory template.Program across the process boundary.
func jobCommand(g *Globals, job plan.Job) *exec.Cmd {
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}

	args := globalArgs(g)

	switch {
	case job.Build != nil:
		args = append(args, "__job", job.Build.LayerInfo.ID())
		if job.Build.Target.Docker != nil {
			args = append(args, "--docker", job.Build.Target.Docker.String())
		} else {
			args = append(args, "--path", job.Build.Target.Program.Path)
		}
		for _, l := range job.Build.Layers {
			args = append(args, "--layer", l)
		}
	case job.Run != nil:
		args = append(args, "__run", job.Run.Name)
	}

	return exec.Command(self, args...)
}

func globalArgs(g *Globals) []string {
	return []string{
		"--base-dir", g.BaseDir,
		"--agent-binary", g.AgentBinary,
		"--cache-dir", g.CacheDir,
		"--rules", g.RulesFile,
	}
}
