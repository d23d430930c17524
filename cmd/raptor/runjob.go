package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raptorforge/raptor/build"
	"github.com/raptorforge/raptor/plan"
	"github.com/raptorforge/raptor/sandbox"
	"github.com/raptorforge/raptor/template"
)

// RunCmd is the hidden re-exec entrypoint for executing one named run
// job in its own OS process. It re-reads the rule file (already cheap
// and already on disk) rather than have its parent serialize a
// plan.RunTarget across the process boundary.
type RunCmd struct {
	Name string `arg:"" help:"Name of the [run.<name>] job to execute"`
}

func (c *RunCmd) Run(g *Globals) error {
	rules := g.loadRules()
	if rules == nil {
		return fmt.Errorf("no rule file loaded")
	}
	rule, ok := rules.Run[c.Name]
	if !ok {
		return fmt.Errorf("unknown job %q", c.Name)
	}

	b := g.newBuilder()
	return executeRuleJob(b, c.Name, rule)
}

// executeRuleJob builds rule's target (and its declared inputs), skips
// the run entirely if its Output is already newer than every source it
// depends on, and otherwise launches a sandbox over the built layers to
// run the target's entrypoint with its declared mounts/environment.
func executeRuleJob(b *build.Builder, name string, rule plan.RunTarget) error {
	prog, err := b.Load(rule.Target)
	if err != nil {
		return fmt.Errorf("loading target %q of job %q: %w", rule.Target, name, err)
	}

	if rule.Output != "" {
		stale, err := isStale(b, prog, rule)
		if err != nil {
			return err
		}
		if !stale {
			return nil
		}
	}

	layers, err := b.BuildProgram(prog)
	if err != nil {
		return fmt.Errorf("building target %q of job %q: %w", rule.Target, name, err)
	}

	for _, input := range rule.Input {
		inputProg, err := b.Load(input)
		if err != nil {
			return fmt.Errorf("loading input %q of job %q: %w", input, name, err)
		}
		if _, err := b.BuildProgram(inputProg); err != nil {
			return fmt.Errorf("building input %q of job %q: %w", input, name, err)
		}
	}

	client, err := sandbox.Launch(layers, b.AgentBinary, ruleBinds(rule), nil)
	if err != nil {
		return fmt.Errorf("launching job %q: %w", name, err)
	}
	defer client.Close()

	for key, value := range rule.Env {
		if err := client.Setenv(key, value); err != nil {
			return fmt.Errorf("setting env %q for job %q: %w", key, name, err)
		}
	}

	argv := append(append([]string(nil), rule.Entrypoint...), rule.Args...)
	if len(argv) == 0 {
		return fmt.Errorf("job %q has no entrypoint", name)
	}

	return client.Run(argv)
}

// ruleBinds turns a run target's Cache/Input/Output lists into fixed
// sandbox mount points, independent of (and simpler than) a recipe's own
// MOUNT-statement resolution: a run job's Cache/Input/Output entries
// name host paths directly, not recipe module names.
func ruleBinds(rule plan.RunTarget) []sandbox.ExtraBind {
	var binds []sandbox.ExtraBind

	for _, c := range rule.Cache {
		binds = append(binds, sandbox.ExtraBind{
			Src: c, Dst: filepath.Join("/mnt/cache", filepath.Base(c)),
		})
	}
	for _, in := range rule.Input {
		binds = append(binds, sandbox.ExtraBind{
			Src: in, Dst: filepath.Join("/mnt/input", filepath.Base(in)), ReadOnly: true,
		})
	}
	if rule.Output != "" {
		binds = append(binds, sandbox.ExtraBind{Src: rule.Output, Dst: "/mnt/output"})
	}

	return binds
}

// isStale reports whether rule needs to run again: true if its Output
// doesn't exist yet, or is older than the newest source file reachable
// from its target or any declared input.
func isStale(b *build.Builder, prog *template.Program, rule plan.RunTarget) (bool, error) {
	outInfo, err := os.Stat(rule.Output)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("statting output %q: %w", rule.Output, err)
	}

	newest, err := newestSourceTime(b, prog)
	if err != nil {
		return false, err
	}
	for _, input := range rule.Input {
		inputProg, err := b.Load(input)
		if err != nil {
			return false, fmt.Errorf("loading input %q: %w", input, err)
		}
		t, err := newestSourceTime(b, inputProg)
		if err != nil {
			return false, err
		}
		if t.After(newest) {
			newest = t
		}
	}

	return newest.After(outInfo.ModTime()), nil
}

func newestSourceTime(b *build.Builder, prog *template.Program) (time.Time, error) {
	var newest time.Time

	paths := append([]string{prog.Path}, build.SourcePaths(b.Loader, prog)...)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("statting source %q: %w", p, err)
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}

	return newest, nil
}
