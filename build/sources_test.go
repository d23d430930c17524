package build

import (
	"testing"

	"github.com/raptorforge/raptor/template"
)

func TestSourcePathsCollectsCopyAndRender(t *testing.T) {
	files := memReader{
		"recipes/app.rapt": "COPY app.bin /opt/app\nRENDER motd.tpl /etc/motd\nCOPY /abs/path /opt/abs\n",
	}
	b := newBuilder(files, nil)

	prog, err := b.Loader.Load("recipes/app.rapt", template.Context{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	paths := sourcePaths(b.Loader, prog)
	want := map[string]bool{
		"recipes/app.bin":  true,
		"recipes/motd.tpl": true,
		"/abs/path":        true,
	}
	if len(paths) != len(want) {
		t.Fatalf("sourcePaths = %v, want keys %v", paths, want)
	}
	for _, p := range paths {
		if !want[p] {
			t.Errorf("unexpected source path %q", p)
		}
	}
}

func TestSourcePathsDedups(t *testing.T) {
	files := memReader{
		"recipes/app.rapt": "COPY a.txt /x\nCOPY a.txt /y\n",
	}
	b := newBuilder(files, nil)

	prog, err := b.Loader.Load("recipes/app.rapt", template.Context{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	paths := sourcePaths(b.Loader, prog)
	if len(paths) != 1 {
		t.Fatalf("sourcePaths = %v, want 1 deduped entry", paths)
	}
}

func TestSourcePathsTracksInclude(t *testing.T) {
	files := memReader{
		"recipes/app.rapt": "INCLUDE common\nCOPY app.bin /opt/app\n",
		"recipes/common.rinc": "RUN /bin/true\n",
	}
	b := newBuilder(files, nil)

	prog, err := b.Loader.Load("recipes/app.rapt", template.Context{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	paths := sourcePaths(b.Loader, prog)
	want := map[string]bool{
		"recipes/common.rinc": true,
		"recipes/app.bin":     true,
	}
	if len(paths) != len(want) {
		t.Fatalf("sourcePaths = %v, want keys %v", paths, want)
	}
	for _, p := range paths {
		if !want[p] {
			t.Errorf("unexpected source path %q", p)
		}
	}
}
