package module

import "testing"

func TestParseBasic(t *testing.T) {
	n := Parse("a.b")
	if got := n.Parts(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Parts() = %v", got)
	}
	if _, ok := n.Root(); ok {
		t.Fatal("expected no root")
	}
}

func TestParseRoot(t *testing.T) {
	n := Parse("$foo.a.b")
	root, ok := n.Root()
	if !ok || root != "foo" {
		t.Fatalf("Root() = %q, %v", root, ok)
	}
	if got := n.Parts(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Parts() = %v", got)
	}
}

func TestFormat(t *testing.T) {
	n := Parse("a.b")
	if got := n.String(); got != "a.b" {
		t.Fatalf("String() = %q", got)
	}
}

func TestParseEmpty(t *testing.T) {
	n := Parse("")
	if !n.IsEmpty() {
		t.Fatal("expected empty name")
	}
}

func TestProgramAndIncludePaths(t *testing.T) {
	n := Parse("a.b")
	if got, want := n.ProgramPath(), "a/b.rapt"; got != want {
		t.Errorf("ProgramPath() = %q, want %q", got, want)
	}
	if got, want := n.IncludePath(), "a/b.rinc"; got != want {
		t.Errorf("IncludePath() = %q, want %q", got, want)
	}
}

func TestSafeParentRejectsRoot(t *testing.T) {
	if _, err := SafeParent("/"); err == nil {
		t.Fatal("expected error for root path")
	}
	if _, err := SafeParent("."); err == nil {
		t.Fatal("expected error for current-dir path")
	}
}

func TestSafeParentOrdinary(t *testing.T) {
	got, err := SafeParent("a/b.rapt")
	if err != nil {
		t.Fatalf("SafeParent: %v", err)
	}
	if got != "a" {
		t.Fatalf("SafeParent() = %q, want %q", got, "a")
	}
}

func TestResolveRelative(t *testing.T) {
	n := Parse("a.b")
	path, err := Resolve(n, "recipes", nil, "rapt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := "recipes/a/b.rapt"; path != want {
		t.Fatalf("Resolve() = %q, want %q", path, want)
	}
}

func TestResolvePackageRoot(t *testing.T) {
	n := Parse("$foo.a.b")
	packages := map[string]string{"foo": "/opt/pkgs/foo"}

	path, err := Resolve(n, "recipes", packages, "rapt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := "/opt/pkgs/foo/a/b.rapt"; path != want {
		t.Fatalf("Resolve() = %q, want %q", path, want)
	}
}

func TestResolveUnknownPackage(t *testing.T) {
	n := Parse("$missing.a")
	if _, err := Resolve(n, "recipes", nil, "rapt"); err == nil {
		t.Fatal("expected ErrPackageNotFound")
	}
}
