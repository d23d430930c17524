package plan

import (
	"fmt"

	"github.com/raptorforge/raptor/build"
	"github.com/raptorforge/raptor/cache"
)

// BuildJob is a Job that builds one layer, on top of the layers already
// built beneath it in its stack.
type BuildJob struct {
	Layers    []string
	Target    build.Target
	LayerInfo cache.LayerInfo
}

// RunJob is a Job that runs a named rule's target once its build
// dependencies are satisfied.
type RunJob struct {
	Name string
	Rule RunTarget
}

// Job is one DAG node: exactly one of Build or Run is set.
type Job struct {
	Build *BuildJob
	Run   *RunJob
}

func (j Job) String() string {
	switch {
	case j.Build != nil:
		return "build: " + j.Build.LayerInfo.Name
	case j.Run != nil:
		return fmt.Sprintf("run: %s %s %v", j.Run.Name, j.Run.Rule.Target, j.Run.Rule.Input)
	default:
		return "(empty job)"
	}
}

// Planner builds a DAG of Build/Run jobs keyed by content hash. Cycles
// are impossible by construction: FROM is acyclic and a recipe can't
// reference itself, so edges always point from the node under
// construction to nodes already inserted.
type Planner struct {
	builder *build.Builder
	rules   *Rules

	edges map[uint64][]uint64 // node -> the nodes it depends on
	jobs  map[uint64]Job
}

// NewPlanner creates a Planner over builder. rules may be nil if the plan
// only ever adds build jobs directly (no named run targets).
func NewPlanner(builder *build.Builder, rules *Rules) *Planner {
	return &Planner{
		builder: builder,
		rules:   rules,
		edges:   make(map[uint64][]uint64),
		jobs:    make(map[uint64]Job),
	}
}

// AddBuildJob loads and stacks name's recipe, inserting a Build node for
// each stack entry not already planned, and returns the hash of the
// stack's head (the entry for name itself) — or nil if the stack is
// somehow empty.
func (p *Planner) AddBuildJob(name string) (*uint64, error) {
	prog, err := p.builder.Load(name)
	if err != nil {
		return nil, err
	}

	targets, err := p.builder.Stack(prog)
	if err != nil {
		return nil, err
	}

	var last *uint64
	var layers []string

	for _, target := range targets {
		info, hash, err := p.builder.LayerInfo(target, last)
		if err != nil {
			return nil, err
		}
		donePath := info.DonePath()

		if _, exists := p.jobs[hash]; !exists {
			p.jobs[hash] = Job{Build: &BuildJob{
				Layers:    append([]string(nil), layers...),
				Target:    target,
				LayerInfo: info,
			}}
			if _, ok := p.edges[hash]; !ok {
				p.edges[hash] = nil
			}
		}

		// A recipe layer depends on the layer beneath it; a Docker
		// source is the root of its chain and has no build dependency.
		if target.Docker == nil && last != nil {
			p.edges[hash] = append(p.edges[hash], *last)
		}

		layers = append(layers, donePath)
		h := hash
		last = &h
	}

	return last, nil
}

// AddNamedRunJob looks up name in the rule file's [run.*] table and adds
// it via AddRunJob.
func (p *Planner) AddNamedRunJob(name string) error {
	if p.rules == nil {
		return fmt.Errorf("no rule file loaded")
	}
	rule, ok := p.rules.Run[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return p.AddRunJob(name, rule)
}

// AddRunJob inserts a Run node for name depending on rule's own build
// target and on a build job for every declared input.
func (p *Planner) AddRunJob(name string, rule RunTarget) error {
	buildHash, err := p.AddBuildJob(rule.Target)
	if err != nil {
		return fmt.Errorf("planning run job %q: %w", name, err)
	}

	runHash := hashRunTarget(name, rule)

	var deps []uint64
	if buildHash != nil {
		deps = append(deps, *buildHash)
	}

	p.jobs[runHash] = Job{Run: &RunJob{Name: name, Rule: rule}}

	for _, input := range rule.Input {
		inputHash, err := p.AddBuildJob(input)
		if err != nil {
			return fmt.Errorf("planning input %q of run job %q: %w", input, name, err)
		}
		if inputHash != nil {
			deps = append(deps, *inputHash)
		}
	}

	p.edges[runHash] = deps
	return nil
}

// Add adds one CLI-named target: "%group" fans out a [group.<name>]
// entry's run and build lists, anything else is a single named run job.
func (p *Planner) Add(target string) error {
	if name, ok := stripGroupPrefix(target); ok {
		if p.rules == nil {
			return fmt.Errorf("no rule file loaded")
		}
		group, ok := p.rules.Group[name]
		if !ok {
			return fmt.Errorf("unknown group %q", name)
		}
		for _, run := range group.Run {
			if err := p.AddNamedRunJob(run); err != nil {
				return err
			}
		}
		for _, name := range group.Build {
			if _, err := p.AddBuildJob(name); err != nil {
				return err
			}
		}
		return nil
	}

	return p.AddNamedRunJob(target)
}

func stripGroupPrefix(target string) (string, bool) {
	if len(target) > 0 && target[0] == '%' {
		return target[1:], true
	}
	return "", false
}

// Plan finalizes the DAG: a topological order over every planned job's
// key, and the key-to-job map that order indexes into.
func (p *Planner) Plan() ([]uint64, map[uint64]Job, error) {
	order, err := topoSort(p.edges)
	if err != nil {
		return nil, nil, err
	}
	return order, p.jobs, nil
}

// Edges exposes each planned node's own dependency list, for a caller
// (such as a wave-scheduled parallel executor) that needs to know when a
// node becomes ready independently of the flattened topological order.
func (p *Planner) Edges() map[uint64][]uint64 {
	return p.edges
}
