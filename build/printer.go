package build

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintExecutor is the "-n/--no-act" dry-run path: instead of launching a
// sandbox, it writes a human-readable trace of what a target's
// instructions would have done.
type PrintExecutor struct {
	Out io.Writer
}

// NewPrintExecutor creates a PrintExecutor writing to out.
func NewPrintExecutor(out io.Writer) *PrintExecutor {
	return &PrintExecutor{Out: out}
}

// Run prints target's instructions (or, for a Docker source, the pull it
// would have performed) without touching the sandbox or the network.
func (p *PrintExecutor) Run(target Target) error {
	if target.Docker != nil {
		fmt.Fprintf(p.Out, "%s docker image [%s]\n", color.YellowString("Would pull"), target.Docker)
		return nil
	}

	for _, stmt := range target.Program.Statements {
		fmt.Fprintln(p.Out, stmt.Inst.String())
	}
	return nil
}
