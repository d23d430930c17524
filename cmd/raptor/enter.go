package main

import (
	"fmt"
	"os"

	"github.com/raptorforge/raptor/sandbox"
)

// EnterCmd builds a target and runs a command inside it interactively,
// defaulting to a shell. A StateDir, if given, becomes the sandbox's
// writable top overlay directory (systemd-nspawn's --overlay takes the
// last path as the writable upper layer), so repeated "enter" calls
// against the same StateDir see each other's changes.
type EnterCmd struct {
	Target   string   `arg:"" help:"Recipe name to build and enter"`
	StateDir string   `long:"state-dir" help:"Persistent writable directory layered on top of the built image"`
	Args     []string `arg:"" optional:"" help:"Command to run inside the sandbox (default: /bin/sh)"`
}

func (c *EnterCmd) Run(g *Globals) error {
	b := g.newBuilder()

	layers, err := b.BuildLayers(c.Target)
	if err != nil {
		return fmt.Errorf("building %q: %w", c.Target, err)
	}

	if c.StateDir != "" {
		if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
			return fmt.Errorf("creating state dir %q: %w", c.StateDir, err)
		}
		layers = append(layers, c.StateDir)
	}

	client, err := sandbox.Launch(layers, g.AgentBinary, nil, nil)
	if err != nil {
		return fmt.Errorf("launching %q: %w", c.Target, err)
	}
	defer client.Close()

	argv := c.Args
	if len(argv) == 0 {
		argv = []string{"/bin/sh"}
	}

	return client.Run(argv)
}
