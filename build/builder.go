package build

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/raptorforge/raptor/cache"
	"github.com/raptorforge/raptor/module"
	"github.com/raptorforge/raptor/reference"
	"github.com/raptorforge/raptor/registry"
	"github.com/raptorforge/raptor/runner"
	"github.com/raptorforge/raptor/sandbox"
	"github.com/raptorforge/raptor/template"
)

// Builder walks a recipe's FROM chain and builds whichever layers in it
// aren't already on disk, driving a sandboxed agent for recipe layers and
// the registry downloader for Docker/OCI base layers.
type Builder struct {
	Loader      *template.Loader
	Engine      template.Engine
	Downloader  *registry.Downloader
	AgentBinary string
	Out         io.Writer

	// BaseDir resolves a MOUNT --layers/--overlay Source (an unrooted
	// dotted module name) to an on-disk recipe. FROM resolves an
	// unrooted name against the referencing file's directory, but
	// MOUNT's resolver doesn't have
	// the mounting statement's own Origin available (ResolveMounts only
	// gets a bare name string), so it always resolves against this fixed
	// root rather than the referencing file's directory.
	BaseDir string

	// DryRun simulates every layer instead of building it, per target's
	// PrintExecutor trace (the "-n/--no-act" CLI flag).
	DryRun bool
}

// Stack resolves prog's FROM chain into an ordered, root-first build
// stack.
func (b *Builder) Stack(prog *template.Program) ([]Target, error) {
	return b.stack(prog)
}

// BuildLayers builds every layer a named recipe's FROM chain resolves to
// and returns their done-paths, lowest layer first. This is the
// runner.LayerBuilder a MOUNT --layers/--overlay instruction needs to
// build the recipe it references.
func (b *Builder) BuildLayers(name string) ([]string, error) {
	prog, err := b.Load(name)
	if err != nil {
		return nil, err
	}
	return b.BuildProgram(prog)
}

// Load resolves a dotted module name against BaseDir (or, for a "$root"
// name, the loader's package table) and loads the recipe it names. A
// job's target in a rule file and a MOUNT's Source are both named this
// way.
func (b *Builder) Load(name string) (*template.Program, error) {
	path, err := module.Resolve(module.Parse(name), b.BaseDir, b.Loader.Packages, "rapt")
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", name, err)
	}

	prog, err := b.Loader.Load(path, template.Context{})
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", name, err)
	}
	return prog, nil
}

// LayerInfo is the exported form of layerInfo, for callers (such as
// plan.Planner) that need a target's cache identity without driving a
// full build.
func (b *Builder) LayerInfo(target Target, parentKey *uint64) (cache.LayerInfo, uint64, error) {
	return b.layerInfo(target, parentKey)
}

// LoadPath loads a recipe from an already-resolved file path, bypassing
// module-name resolution entirely. A planned Target's Program already
// carries its own resolved Path, so a job runner rebuilding one plan
// node in its own process only needs to reload that exact file.
func (b *Builder) LoadPath(path string) (*template.Program, error) {
	return b.Loader.Load(path, template.Context{})
}

// BuildOne builds exactly one stack entry — the unit of work a single
// plan job represents — given the done-paths of everything already
// built beneath it, without walking or revalidating the rest of its
// FROM chain.
func (b *Builder) BuildOne(target Target, layers []string, info cache.LayerInfo) (string, error) {
	return b.buildLayer(target, layers, info)
}

// BuildProgram builds prog's entire FROM chain (skipping any layer
// already built) and returns the done-path of every layer in the stack,
// lowest (base) layer first.
func (b *Builder) BuildProgram(prog *template.Program) ([]string, error) {
	targets, err := b.stack(prog)
	if err != nil {
		return nil, err
	}

	var layers []string
	var parentKey *uint64

	for _, target := range targets {
		info, key, err := b.layerInfo(target, parentKey)
		if err != nil {
			return nil, err
		}

		donePath, err := b.buildLayer(target, layers, info)
		if err != nil {
			return nil, err
		}

		layers = append(layers, donePath)
		parentKey = &key
	}

	return layers, nil
}

func (b *Builder) logf(format string, args ...any) {
	if b.Out == nil {
		return
	}
	fmt.Fprintf(b.Out, format+"\n", args...)
}

// buildLayer builds one target on top of the given already-built layers,
// skipping the build entirely if info's done-path already exists.
func (b *Builder) buildLayer(target Target, layers []string, info cache.LayerInfo) (string, error) {
	name := info.Name
	workPath := info.WorkPath()
	donePath := info.DonePath()

	if _, err := os.Stat(donePath); err == nil {
		b.logf("%s [%s] %s", color.GreenString("Completed"), info.HashHex(), color.YellowString(name))
		return donePath, nil
	}

	b.logf("%s %s: %s", color.WhiteString("Building"), color.YellowString(name), color.GreenString(workPath))

	if b.DryRun {
		out := b.Out
		if out == nil {
			out = os.Stdout
		}
		return donePath, NewPrintExecutor(out).Run(target)
	}

	if err := b.build(target, layers, workPath); err != nil {
		return "", err
	}

	if err := os.Rename(workPath, donePath); err != nil {
		return "", fmt.Errorf("finishing layer %q: %w", name, err)
	}

	if _, err := os.Stat(MetadataPath(workPath)); err == nil {
		if err := os.Rename(MetadataPath(workPath), MetadataPath(donePath)); err != nil {
			return "", fmt.Errorf("finishing layer %q metadata: %w", name, err)
		}
	}

	return donePath, nil
}

func (b *Builder) build(target Target, layers []string, rootDir string) error {
	if target.Docker != nil {
		return b.pullDocker(*target.Docker, rootDir)
	}
	return b.buildRecipe(target.Program, layers, rootDir)
}

func (b *Builder) buildRecipe(prog *template.Program, layers []string, rootDir string) error {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return err
	}

	binds, overlays, err := runner.ResolveMounts(prog.Statements, b, rootDir)
	if err != nil {
		return fmt.Errorf("resolving mounts for %s: %w", prog.Path, err)
	}

	sandboxBinds := make([]sandbox.ExtraBind, len(binds))
	for i, bind := range binds {
		sandboxBinds[i] = sandbox.ExtraBind{Src: bind.Src, Dst: bind.Dst, ReadOnly: bind.ReadOnly}
	}
	sandboxOverlays := make([]sandbox.ExtraOverlay, len(overlays))
	for i, ov := range overlays {
		sandboxOverlays[i] = sandbox.ExtraOverlay{Layers: ov.Layers, Dst: ov.Dst}
	}

	allLayers := append(append([]string{}, layers...), rootDir)

	client, err := sandbox.Launch(allLayers, b.AgentBinary, sandboxBinds, sandboxOverlays)
	if err != nil {
		return fmt.Errorf("launching sandbox for %s: %w", prog.Path, err)
	}
	defer client.Close()

	meta, err := runner.Exec(runner.NewSandboxClient(client), prog.Statements, b.Engine, template.Context{})
	if err != nil {
		return fmt.Errorf("executing %s: %w", prog.Path, err)
	}

	pkgMeta, err := loadPackageMeta(prog.Path)
	if err != nil {
		return fmt.Errorf("loading package metadata for %s: %w", prog.Path, err)
	}
	meta.Labels = pkgMeta.Labels

	return writeMetadata(rootDir, meta)
}

func (b *Builder) pullDocker(ref reference.Reference, rootDir string) error {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return err
	}

	manifest, err := b.Downloader.Pull(ref.Domain(), ref.ImagePath(), ref.EffectiveTag(), "linux", "amd64", nil)
	if err != nil {
		return fmt.Errorf("pulling %s: %w", ref, err)
	}

	for _, layer := range manifest.Layers {
		blob := b.Downloader.LayerPath(layer.Digest)
		b.logf("%s [%s]", color.WhiteString("Extracting layer"), layer.Digest)
		if err := extractLayer(blob, rootDir); err != nil {
			return fmt.Errorf("extracting layer %s: %w", layer.Digest, err)
		}
	}

	return nil
}

// extractLayer unpacks a gzip-or-plain tar blob into dest.
func extractLayer(blobPath, dest string) error {
	f, err := os.Open(blobPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if gz, err := gzip.NewReader(f); err == nil {
		defer gz.Close()
		r = gz
	} else {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dest, hdr.Name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		case tar.TypeSymlink:
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		}
	}
}
