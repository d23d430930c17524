package build

import (
	"testing"

	"github.com/raptorforge/raptor/reference"
	"github.com/raptorforge/raptor/template"
)

func TestLayerInfoProgramDeterministic(t *testing.T) {
	files := memReader{
		"recipes/app.rapt": "WRITE /etc/motd \"hello\"\n",
	}
	b := newBuilder(files, nil)

	prog, err := b.Loader.Load("recipes/app.rapt", template.Context{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	info1, key1, err := b.layerInfo(Target{Program: prog}, nil)
	if err != nil {
		t.Fatalf("layerInfo: %v", err)
	}
	info2, key2, err := b.layerInfo(Target{Program: prog}, nil)
	if err != nil {
		t.Fatalf("layerInfo: %v", err)
	}
	if info1.Hash != info2.Hash || key1 != key2 {
		t.Fatal("layerInfo should be deterministic for the same program")
	}
	if info1.Name != "app" {
		t.Fatalf("Name = %q, want \"app\"", info1.Name)
	}
}

func TestLayerInfoChangesWithParentKey(t *testing.T) {
	files := memReader{
		"recipes/app.rapt": "WRITE /etc/motd \"hello\"\n",
	}
	b := newBuilder(files, nil)

	prog, err := b.Loader.Load("recipes/app.rapt", template.Context{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, keyNoParent, err := b.layerInfo(Target{Program: prog}, nil)
	if err != nil {
		t.Fatalf("layerInfo: %v", err)
	}

	var parent uint64 = 42
	_, keyWithParent, err := b.layerInfo(Target{Program: prog}, &parent)
	if err != nil {
		t.Fatalf("layerInfo: %v", err)
	}

	if keyNoParent == keyWithParent {
		t.Fatal("expected different keys for different parent chains")
	}
}

func TestLayerInfoDockerDeterministic(t *testing.T) {
	ref, err := reference.Parse("library/debian:bullseye")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	b := &Builder{}
	info1, key1, err := b.layerInfo(Target{Docker: &ref}, nil)
	if err != nil {
		t.Fatalf("layerInfo: %v", err)
	}
	info2, key2, err := b.layerInfo(Target{Docker: &ref}, nil)
	if err != nil {
		t.Fatalf("layerInfo: %v", err)
	}
	if info1.Hash != info2.Hash || key1 != key2 {
		t.Fatal("docker layerInfo should be deterministic")
	}
	if info1.Name != "library-debian-bullseye" {
		t.Fatalf("Name = %q", info1.Name)
	}
}

func TestLayerInfoDockerIgnoresParentKey(t *testing.T) {
	ref, err := reference.Parse("debian")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	b := &Builder{}
	_, key1, err := b.layerInfo(Target{Docker: &ref}, nil)
	if err != nil {
		t.Fatalf("layerInfo: %v", err)
	}
	var parent uint64 = 7
	_, key2, err := b.layerInfo(Target{Docker: &ref}, &parent)
	if err != nil {
		t.Fatalf("layerInfo: %v", err)
	}
	if key1 != key2 {
		t.Fatal("a docker source is the root of its chain; its key shouldn't depend on a parent")
	}
}
