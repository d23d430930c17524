package recipe

import (
	"fmt"
	"strings"

	"github.com/raptorforge/raptor/module"
)

// Instruction is one parsed recipe line. Concrete types implement it; a
// type switch on the concrete value dispatches by instruction kind the way
// the rest of this module (builder, dry-run printer, planner) needs to.
type Instruction interface {
	// Name returns the instruction's keyword, e.g. "COPY".
	Name() string
	fmt.Stringer
}

// Statement pairs a parsed Instruction with the Origin it came from.
type Statement struct {
	Inst   Instruction
	Origin Origin
}

// FromSource is FROM's argument: either another recipe (by module name) or
// a Docker/OCI image reference.
type FromSource struct {
	Recipe *module.Name
	Docker string // non-empty when this is a "docker://" source
}

func (s FromSource) String() string {
	if s.Docker != "" {
		return "docker://" + s.Docker
	}
	if s.Recipe != nil {
		return s.Recipe.String()
	}
	return ""
}

// InstFrom is the FROM instruction: the base layer stack a recipe builds
// on top of.
type InstFrom struct {
	From FromSource
}

func (i InstFrom) Name() string   { return "FROM" }
func (i InstFrom) String() string { return "FROM " + i.From.String() }

// MountMode selects how MOUNT exposes another recipe's output inside the
// build sandbox (spec.md's Component Design table plus SPEC_FULL.md §4).
type MountMode int

const (
	MountSimple MountMode = iota
	MountLayers
	MountOverlay
)

func (m MountMode) String() string {
	switch m {
	case MountLayers:
		return "--layers"
	case MountOverlay:
		return "--overlay"
	default:
		return "--simple"
	}
}

// InstMount is the MOUNT instruction. Source is a plain host path for
// MountSimple, or a recipe module name for MountLayers/MountOverlay.
type InstMount struct {
	Mode   MountMode
	Source string
	Dest   string
}

func (i InstMount) Name() string { return "MOUNT" }
func (i InstMount) String() string {
	return fmt.Sprintf("MOUNT %s %q %q", i.Mode, i.Source, i.Dest)
}

// InstCopy is the COPY instruction: one or more sources into one
// destination, with optional ownership/mode overrides.
type InstCopy struct {
	Srcs  []string
	Dest  string
	Chmod *uint16
	Chown *Chown
}

func (i InstCopy) Name() string { return "COPY" }
func (i InstCopy) String() string {
	var b strings.Builder
	b.WriteString("COPY ")
	writeFileOptions(&b, i.Chmod, i.Chown)
	for _, s := range i.Srcs {
		fmt.Fprintf(&b, "%q ", s)
	}
	fmt.Fprintf(&b, "%q", i.Dest)
	return b.String()
}

// InstRender is the RENDER instruction: a template, its output path, and
// the arguments fed into the template engine.
type InstRender struct {
	Src   string
	Dest  string
	Chmod *uint16
	Chown *Chown
	Args  []IncludeArg
}

func (i InstRender) Name() string { return "RENDER" }
func (i InstRender) String() string {
	var b strings.Builder
	b.WriteString("RENDER ")
	writeFileOptions(&b, i.Chmod, i.Chown)
	fmt.Fprintf(&b, "%q %q", i.Src, i.Dest)
	for _, a := range i.Args {
		fmt.Fprintf(&b, " %s", a)
	}
	return b.String()
}

// InstWrite is the WRITE instruction: a literal body written to a path.
type InstWrite struct {
	Dest  string
	Body  string
	Chmod *uint16
	Chown *Chown
}

func (i InstWrite) Name() string { return "WRITE" }
func (i InstWrite) String() string {
	var b strings.Builder
	b.WriteString("WRITE ")
	writeFileOptions(&b, i.Chmod, i.Chown)
	fmt.Fprintf(&b, "%q %q", i.Dest, i.Body)
	return b.String()
}

// InstMkdir is the MKDIR instruction.
type InstMkdir struct {
	Dest    string
	Chmod   *uint16
	Chown   *Chown
	Parents bool
}

func (i InstMkdir) Name() string { return "MKDIR" }
func (i InstMkdir) String() string {
	var b strings.Builder
	b.WriteString("MKDIR ")
	if i.Parents {
		b.WriteString("--parents ")
	}
	writeFileOptions(&b, i.Chmod, i.Chown)
	fmt.Fprintf(&b, "%q", i.Dest)
	return b.String()
}

// InstInclude is the INCLUDE instruction: splices another recipe file's
// statements in place, after resolving its arguments.
type InstInclude struct {
	Src  module.Name
	Args []IncludeArg
}

func (i InstInclude) Name() string { return "INCLUDE" }
func (i InstInclude) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "INCLUDE %s", i.Src)
	for _, a := range i.Args {
		fmt.Fprintf(&b, " %s", a)
	}
	return b.String()
}

// InstRun is the RUN instruction: one sandboxed command invocation.
type InstRun struct {
	Run []string
}

func (i InstRun) Name() string { return "RUN" }
func (i InstRun) String() string {
	return "RUN " + strings.Join(i.Run, " ")
}

// InstEnvAssign is one "key=value" pair of an ENV instruction.
type InstEnvAssign struct {
	Key   string
	Value string
}

func (a InstEnvAssign) String() string {
	return a.Key + "=" + a.Value
}

// InstEnv is the ENV instruction.
type InstEnv struct {
	Env []InstEnvAssign
}

func (i InstEnv) Name() string { return "ENV" }
func (i InstEnv) String() string {
	var b strings.Builder
	b.WriteString("ENV")
	for _, e := range i.Env {
		fmt.Fprintf(&b, " %s", e)
	}
	return b.String()
}

// InstWorkdir is the WORKDIR instruction.
type InstWorkdir struct {
	Dir string
}

func (i InstWorkdir) Name() string   { return "WORKDIR" }
func (i InstWorkdir) String() string { return "WORKDIR " + i.Dir }

// InstEntrypoint is the ENTRYPOINT instruction: the layer's default
// process, in exec form.
type InstEntrypoint struct {
	Entrypoint []string
}

func (i InstEntrypoint) Name() string { return "ENTRYPOINT" }
func (i InstEntrypoint) String() string {
	return "ENTRYPOINT " + strings.Join(i.Entrypoint, " ")
}

// InstCmd is the CMD instruction: default arguments appended to
// ENTRYPOINT, in exec form.
type InstCmd struct {
	Cmd []string
}

func (i InstCmd) Name() string   { return "CMD" }
func (i InstCmd) String() string { return "CMD " + strings.Join(i.Cmd, " ") }

func writeFileOptions(b *strings.Builder, chmod *uint16, chown *Chown) {
	if chmod != nil {
		fmt.Fprintf(b, "--chmod %04o ", *chmod)
	}
	if chown != nil {
		fmt.Fprintf(b, "--chown %s ", chown)
	}
}
