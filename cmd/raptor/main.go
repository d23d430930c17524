// Command raptor builds root-filesystem images from layered recipes: a
// FROM chain of .rapt files assembled into a stack of overlay layers,
// driven through a sandboxed agent process.
package main

import (
	"net/http"
	"os"

	"github.com/alecthomas/kong"
	"github.com/raptorforge/raptor/build"
	"github.com/raptorforge/raptor/plan"
	"github.com/raptorforge/raptor/registry"
	"github.com/raptorforge/raptor/template"
)

// Globals are the flags every subcommand shares.
type Globals struct {
	NoAct       bool   `short:"n" long:"no-act" help:"Dry run: print the instruction trace instead of building"`
	BaseDir     string `long:"base-dir" default:"." help:"Root directory a bare module name resolves against"`
	AgentBinary string `long:"agent-binary" default:"/usr/local/libexec/raptor-agent" help:"Path to the raptor-agent binary bind-mounted into the sandbox"`
	CacheDir    string `long:"cache-dir" default:".raptor-cache" help:"Directory for downloaded registry blobs and manifests"`
	RulesFile   string `long:"rules" default:"raptor.toml" help:"Named run-job rule file"`
}

// newBuilder assembles a build.Builder from the resolved flags.
func (g *Globals) newBuilder() *build.Builder {
	return &build.Builder{
		Loader:      template.NewLoader(template.OSFileReader{}, nil),
		Engine:      template.TextEngine{},
		Downloader:  registry.NewDownloader(g.CacheDir, http.DefaultClient),
		AgentBinary: g.AgentBinary,
		BaseDir:     g.BaseDir,
		Out:         os.Stderr,
		DryRun:      g.NoAct,
	}
}

// loadRules loads the rule file if one is present, returning nil (not an
// error) when it's simply missing — a rule file is optional; plenty of
// invocations only ever build bare recipe names.
func (g *Globals) loadRules() *plan.Rules {
	if _, err := os.Stat(g.RulesFile); err != nil {
		return nil
	}
	rules, err := plan.LoadRules(g.RulesFile)
	if err != nil {
		return nil
	}
	return rules
}

// CLI is the full command surface: build/dump/check/enter/show are the
// user-facing subcommands; job/run are re-exec entrypoints build spawns
// one OS process per to get the original's per-job process isolation
// and PTY capture (runner.RunParallel/RunWithPTY) without the user ever
// invoking them directly.
type CLI struct {
	Globals

	Build BuildCmd `cmd:"" help:"Build one or more targets (recipes, named jobs, or %group names)"`
	Dump  DumpCmd  `cmd:"" help:"Print the resolved build plan without building anything"`
	Check CheckCmd `cmd:"" help:"Load and stack every target, reporting resolution errors"`
	Enter EnterCmd `cmd:"" help:"Build a target and run a command (default: a shell) inside it"`
	Show  ShowCmd  `cmd:"" help:"Print LayerInfo and ENTRYPOINT/CMD metadata for built layers"`

	JobCmd JobCmd `cmd:"" name:"__job" hidden:"" help:"internal: build one planned layer"`
	RunCmd RunCmd `cmd:"" name:"__run" hidden:"" help:"internal: execute one named run job"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("raptor"),
		kong.Description("Builds root filesystem images from layered recipes"),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
