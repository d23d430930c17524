package build

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPackageMetaMissing(t *testing.T) {
	dir := t.TempDir()
	recipePath := filepath.Join(dir, "app.rapt")

	meta, err := loadPackageMeta(recipePath)
	if err != nil {
		t.Fatalf("loadPackageMeta: %v", err)
	}
	if meta.Labels != nil {
		t.Fatalf("Labels = %v, want nil for a missing sidecar", meta.Labels)
	}
}

func TestLoadPackageMetaPresent(t *testing.T) {
	dir := t.TempDir()
	recipePath := filepath.Join(dir, "app.rapt")

	contents := "labels:\n  org.example.name: app\n  org.example.version: \"1.0\"\n"
	if err := os.WriteFile(filepath.Join(dir, packageMetaName), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	meta, err := loadPackageMeta(recipePath)
	if err != nil {
		t.Fatalf("loadPackageMeta: %v", err)
	}
	if meta.Labels["org.example.name"] != "app" {
		t.Fatalf("Labels[name] = %q", meta.Labels["org.example.name"])
	}
	if meta.Labels["org.example.version"] != "1.0" {
		t.Fatalf("Labels[version] = %q", meta.Labels["org.example.version"])
	}
}

func TestLoadPackageMetaInvalid(t *testing.T) {
	dir := t.TempDir()
	recipePath := filepath.Join(dir, "app.rapt")

	if err := os.WriteFile(filepath.Join(dir, packageMetaName), []byte("labels: [not, a, map]"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := loadPackageMeta(recipePath); err == nil {
		t.Fatal("expected an error for a malformed package.yaml")
	}
}
