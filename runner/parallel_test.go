package runner

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestRunParallelAllSucceed(t *testing.T) {
	jobs := []Job{
		{Name: "one", Cmd: exec.Command("/bin/echo", "one")},
		{Name: "two", Cmd: exec.Command("/bin/echo", "two")},
		{Name: "three", Cmd: exec.Command("/bin/echo", "three")},
	}

	results, err := RunParallel(context.Background(), jobs, 2)
	if err != nil {
		t.Fatalf("RunParallel: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("job %d (%s) failed: %v", i, r.Name, r.Err)
		}
		if !strings.Contains(r.Output, jobs[i].Name) {
			t.Fatalf("job %d output = %q, want to contain %q", i, r.Output, jobs[i].Name)
		}
	}
}

func TestRunParallelCapturesIndividualFailure(t *testing.T) {
	jobs := []Job{
		{Name: "ok", Cmd: exec.Command("/bin/echo", "ok")},
		{Name: "fail", Cmd: exec.Command("/bin/sh", "-c", "exit 7")},
	}

	results, err := RunParallel(context.Background(), jobs, 0)
	if err != nil {
		t.Fatalf("RunParallel: %v", err)
	}
	if results[0].Err != nil {
		t.Fatalf("job 0 should succeed, got %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Fatal("job 1 should report its own exit-status error")
	}
}

func TestRunParallelRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Name: "one", Cmd: exec.Command("/bin/echo", "one")}}
	results, _ := RunParallel(ctx, jobs, 1)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d", len(results))
	}
}
