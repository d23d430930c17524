package runner

import (
	"context"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// Job is one independently runnable unit of work the parallel executor
// schedules: a named Run job from a rule file, or a layer build. Name
// identifies it in JobResult and in any error returned.
type Job struct {
	Name string
	Cmd  *exec.Cmd
}

// JobResult is one Job's captured outcome.
type JobResult struct {
	Name   string
	Output string
	Err    error
}

// RunParallel runs jobs with up to concurrency running at once,
// work-stealing from the shared slice as goroutines free up (the
// errgroup limit does this naturally: a goroutine that finishes early
// immediately starts the next queued job instead of waiting on siblings
// dispatched alongside it). concurrency <= 0 means unlimited.
//
// Every job runs to completion regardless of a sibling's failure;
// RunParallel itself only returns an error if the ctx is canceled. Check
// each JobResult.Err for a job's own failure.
func RunParallel(ctx context.Context, jobs []Job, concurrency int) ([]JobResult, error) {
	results := make([]JobResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = JobResult{Name: job.Name, Err: gctx.Err()}
				return nil
			}
			out, err := RunWithPTY(job.Cmd)
			results[i] = JobResult{Name: job.Name, Output: out, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
