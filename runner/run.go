package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/raptorforge/raptor/recipe"
	"github.com/raptorforge/raptor/template"
)

// RemoteFile is a handle to a file created inside the sandbox, the
// shape *sandbox.File satisfies.
type RemoteFile interface {
	io.Writer
	Close() error
}

// SandboxClient is the subset of *sandbox.Client the runner drives. An
// interface so tests can substitute a fake without a real nspawn
// process.
type SandboxClient interface {
	Run(argv []string) error
	CreateFile(path string, owner *recipe.Chown, mode *uint16) (RemoteFile, error)
	CreateDir(path string, parents bool, owner *recipe.Chown, mode *uint16) error
	Chdir(dir string) error
	Setenv(key, value string) error
}

// Metadata is the layer's recorded default process: ENTRYPOINT plus CMD,
// in exec form, the way a container image records its own entrypoint.
type Metadata struct {
	Entrypoint []string          `json:"entrypoint,omitempty"`
	Cmd        []string          `json:"cmd,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`
}

// Exec drives every non-MOUNT, non-FROM, non-INCLUDE statement in
// statements against client in order, using engine to render RENDER
// instructions and ctx to resolve their Lookup arguments. FROM and
// INCLUDE are skipped: FROM only selects the base layer stack (handled
// by build.Builder.stack), and template.Loader has already placed each
// INCLUDE's expanded statements right after it. MOUNT is resolved
// separately, before the sandbox is even launched, since nspawn only
// accepts bind/overlay specs at process start.
func Exec(client SandboxClient, statements []recipe.Statement, engine template.Engine, ctx template.Context) (Metadata, error) {
	var meta Metadata

	for _, stmt := range statements {
		var err error

		switch inst := stmt.Inst.(type) {
		case recipe.InstFrom, recipe.InstInclude, recipe.InstMount:
			// handled before Exec is ever called

		case recipe.InstCopy:
			err = execCopy(client, stmt, inst)

		case recipe.InstRender:
			err = execRender(client, stmt, inst, engine, ctx)

		case recipe.InstWrite:
			err = execWrite(client, inst)

		case recipe.InstMkdir:
			err = client.CreateDir(inst.Dest, inst.Parents, inst.Chown, inst.Chmod)

		case recipe.InstRun:
			err = client.Run(inst.Run)

		case recipe.InstEnv:
			for _, assign := range inst.Env {
				if err = client.Setenv(assign.Key, assign.Value); err != nil {
					break
				}
			}

		case recipe.InstWorkdir:
			err = client.Chdir(inst.Dir)

		case recipe.InstEntrypoint:
			meta.Entrypoint = inst.Entrypoint

		case recipe.InstCmd:
			meta.Cmd = inst.Cmd

		default:
			err = fmt.Errorf("unhandled instruction %T", inst)
		}

		if err != nil {
			return Metadata{}, fmt.Errorf("%s: %w", stmt.Origin, err)
		}
	}

	return meta, nil
}

func execCopy(client SandboxClient, stmt recipe.Statement, inst recipe.InstCopy) error {
	baseDir := filepath.Dir(stmt.Origin.Path)

	for _, src := range inst.Srcs {
		srcPath := src
		if !filepath.IsAbs(srcPath) {
			srcPath = filepath.Join(baseDir, srcPath)
		}

		data, err := os.ReadFile(srcPath)
		if err != nil {
			return fmt.Errorf("reading COPY source %q: %w", src, err)
		}

		dest := inst.Dest
		if len(inst.Srcs) > 1 {
			dest = filepath.Join(inst.Dest, filepath.Base(src))
		}

		if err := writeRemote(client, dest, data, inst.Chmod, inst.Chown); err != nil {
			return err
		}
	}
	return nil
}

func execRender(client SandboxClient, stmt recipe.Statement, inst recipe.InstRender, engine template.Engine, ctx template.Context) error {
	baseDir := filepath.Dir(stmt.Origin.Path)
	srcPath := inst.Src
	if !filepath.IsAbs(srcPath) {
		srcPath = filepath.Join(baseDir, srcPath)
	}

	body, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading RENDER source %q: %w", inst.Src, err)
	}

	renderCtx, err := ctx.Child(inst.Args)
	if err != nil {
		return fmt.Errorf("resolving RENDER arguments: %w", err)
	}

	out, err := engine.Render(inst.Src, string(body), renderCtx)
	if err != nil {
		return fmt.Errorf("rendering %q: %w", inst.Src, err)
	}

	return writeRemote(client, inst.Dest, []byte(out), inst.Chmod, inst.Chown)
}

func execWrite(client SandboxClient, inst recipe.InstWrite) error {
	return writeRemote(client, inst.Dest, []byte(inst.Body), inst.Chmod, inst.Chown)
}

func writeRemote(client SandboxClient, dest string, data []byte, chmod *uint16, chown *recipe.Chown) error {
	f, err := client.CreateFile(dest, chown, chmod)
	if err != nil {
		return fmt.Errorf("creating %q: %w", dest, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %q: %w", dest, err)
	}
	return f.Close()
}
