package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/raptorforge/raptor/runner"
)

func TestWriteReadMetadataRoundtrip(t *testing.T) {
	dir := t.TempDir()
	donePath := filepath.Join(dir, "layers", "app-0000000000000001")
	if err := os.MkdirAll(filepath.Dir(donePath), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	meta := runner.Metadata{Entrypoint: []string{"/bin/app"}, Cmd: []string{"--flag"}}
	if err := writeMetadata(donePath, meta); err != nil {
		t.Fatalf("writeMetadata: %v", err)
	}

	got, err := ReadMetadata(donePath)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if len(got.Entrypoint) != 1 || got.Entrypoint[0] != "/bin/app" {
		t.Fatalf("Entrypoint = %v", got.Entrypoint)
	}
	if len(got.Cmd) != 1 || got.Cmd[0] != "--flag" {
		t.Fatalf("Cmd = %v", got.Cmd)
	}
}
