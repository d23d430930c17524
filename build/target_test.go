package build

import (
	"testing"

	"github.com/raptorforge/raptor/template"
)

type memReader map[string]string

func (m memReader) ReadFile(path string) (string, error) {
	s, ok := m[path]
	if !ok {
		return "", &missingFileError{path}
	}
	return s, nil
}

type missingFileError struct{ path string }

func (e *missingFileError) Error() string { return "no such file: " + e.path }

func newBuilder(files memReader, pkgs map[string]string) *Builder {
	return &Builder{
		Loader: template.NewLoader(files, pkgs),
		Engine: template.TextEngine{},
	}
}

func TestStackDockerChain(t *testing.T) {
	files := memReader{
		"recipes/app.rapt": "FROM docker://debian:bullseye\nRUN /bin/true\n",
	}
	b := newBuilder(files, nil)

	prog, err := b.Loader.Load("recipes/app.rapt", template.Context{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	stack, err := b.stack(prog)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	if len(stack) != 2 {
		t.Fatalf("len(stack) = %d, want 2", len(stack))
	}
	if stack[0].Docker == nil {
		t.Fatalf("stack[0] should be the docker base, got %+v", stack[0])
	}
	if stack[0].Docker.Repository != "debian" {
		t.Fatalf("stack[0].Docker.Repository = %q", stack[0].Docker.Repository)
	}
	if stack[1].Program == nil || stack[1].Program.Path != "recipes/app.rapt" {
		t.Fatalf("stack[1] should be the requested program, got %+v", stack[1])
	}
}

func TestStackRecipeChain(t *testing.T) {
	files := memReader{
		"recipes/app.rapt":  "FROM base\nRUN /bin/true\n",
		"recipes/base.rapt": "WRITE /etc/motd \"base\"\n",
	}
	b := newBuilder(files, nil)

	prog, err := b.Loader.Load("recipes/app.rapt", template.Context{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	stack, err := b.stack(prog)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	if len(stack) != 2 {
		t.Fatalf("len(stack) = %d, want 2", len(stack))
	}
	if stack[0].Program == nil || stack[0].Program.Path != "recipes/base.rapt" {
		t.Fatalf("stack[0] should be the base recipe, got %+v", stack[0])
	}
	if stack[1].Program == nil || stack[1].Program.Path != "recipes/app.rapt" {
		t.Fatalf("stack[1] should be the requested recipe, got %+v", stack[1])
	}
}

func TestStackNoFromIsSingleEntry(t *testing.T) {
	files := memReader{
		"recipes/root.rapt": "WRITE /etc/motd \"hello\"\n",
	}
	b := newBuilder(files, nil)

	prog, err := b.Loader.Load("recipes/root.rapt", template.Context{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	stack, err := b.stack(prog)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	if len(stack) != 1 || stack[0].Program == nil {
		t.Fatalf("stack = %+v, want a single program entry", stack)
	}
}

func TestStackPackageRootedFrom(t *testing.T) {
	files := memReader{
		"recipes/app.rapt": "FROM $tools.base\n",
		"/opt/tools/base.rapt": "WRITE /etc/motd \"from package\"\n",
	}
	b := newBuilder(files, map[string]string{"tools": "/opt/tools"})

	prog, err := b.Loader.Load("recipes/app.rapt", template.Context{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	stack, err := b.stack(prog)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	if len(stack) != 2 {
		t.Fatalf("len(stack) = %d, want 2", len(stack))
	}
	if stack[0].Program.Path != "/opt/tools/base.rapt" {
		t.Fatalf("stack[0].Program.Path = %q", stack[0].Program.Path)
	}
}

func TestFindFromAbsent(t *testing.T) {
	if _, ok := findFrom(nil); ok {
		t.Fatal("expected no FROM in an empty statement list")
	}
}
