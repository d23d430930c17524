package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/raptorforge/raptor/recipe"
)

func stmts(t *testing.T) []recipe.Statement {
	t.Helper()
	s, err := recipe.Parse("test.rapt", "FROM docker://alpine:3.19\nENV FOO=bar\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func TestComputeKeyDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	a, err := ComputeKey(nil, stmts(t), []string{path})
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}
	b, err := ComputeKey(nil, stmts(t), []string{path})
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}
	if a != b {
		t.Fatalf("ComputeKey() not deterministic: %x != %x", a, b)
	}
}

func TestComputeKeyChangesWithFromKey(t *testing.T) {
	a, err := ComputeKey(nil, stmts(t), nil)
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}
	from := uint64(42)
	b, err := ComputeKey(&from, stmts(t), nil)
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}
	if a == b {
		t.Fatal("expected cache key to change when fromKey differs")
	}
}

func TestComputeKeyChangesWithStatements(t *testing.T) {
	other, err := recipe.Parse("test.rapt", "FROM docker://alpine:3.20\nENV FOO=bar\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	a, err := ComputeKey(nil, stmts(t), nil)
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}
	b, err := ComputeKey(nil, other, nil)
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}
	if a == b {
		t.Fatal("expected cache key to change when statements differ")
	}
}

func TestComputeKeyChangesWithSourceCtime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	a, err := ComputeKey(nil, stmts(t), []string{path})
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}

	// Touching the file changes its ctime even though content is unchanged.
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatalf("Chmod: %v", err)
	}

	b, err := ComputeKey(nil, stmts(t), []string{path})
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}
	if a == b {
		t.Fatal("expected cache key to change when a dependency's ctime changes")
	}
}

func TestComputeKeySourceOrderIndependent(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.txt")
	p2 := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(p1, []byte("a"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(p2, []byte("b"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	a, err := ComputeKey(nil, stmts(t), []string{p1, p2})
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}
	b, err := ComputeKey(nil, stmts(t), []string{p2, p1})
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}
	if a != b {
		t.Fatalf("ComputeKey() depends on source order: %x != %x", a, b)
	}
}

func TestComputeKeyMissingSourceErrors(t *testing.T) {
	if _, err := ComputeKey(nil, stmts(t), []string{"/no/such/file"}); err == nil {
		t.Fatal("expected error for a missing dependency file")
	}
}
