// Package plan turns a recipe (or a rule file of named run jobs) into a
// dependency graph of Build and Run jobs keyed by content hash, ready for
// the runner package to execute in work-stealing order.
package plan

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Rules is the parsed form of a raptor.toml rule file.
type Rules struct {
	Raptor Raptor                 `toml:"raptor"`
	Run    map[string]RunTarget   `toml:"run"`
	Group  map[string]GroupTarget `toml:"group"`
}

// Raptor holds file-level settings: named package roots a recipe's FROM/
// INCLUDE/MOUNT can reference with a "$root" prefix.
type Raptor struct {
	Link map[string]Link `toml:"link"`
}

// Link names one package root's source directory.
type Link struct {
	Source string `toml:"source"`
}

// RunTarget is one `[run.<name>]` entry: a recipe to build plus the
// mounts/environment/arguments to run it with once built.
type RunTarget struct {
	Target     string            `toml:"target"`
	Cache      []string          `toml:"cache"`
	Input      []string          `toml:"input"`
	Output     string            `toml:"output"`
	Entrypoint []string          `toml:"entrypoint"`
	StateDir   string            `toml:"state_dir"`
	Args       []string          `toml:"args"`
	Env        map[string]string `toml:"env"`
}

// GroupTarget is one `[group.<name>]` entry: a named fan-out of run jobs
// (and, unlike the original, build-only jobs too — see DESIGN.md).
type GroupTarget struct {
	Run   []string `toml:"run"`
	Build []string `toml:"build"`
}

// LoadRules reads and parses a raptor.toml rule file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file %q: %w", path, err)
	}

	var rules Rules
	if _, err := toml.Decode(string(data), &rules); err != nil {
		return nil, fmt.Errorf("parsing rule file %q: %w", path, err)
	}
	return &rules, nil
}
