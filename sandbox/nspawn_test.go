package sandbox

import (
	"reflect"
	"testing"
)

func TestEscapeColon(t *testing.T) {
	if got := escapeColon("a:b"); got != `a\:b` {
		t.Fatalf("escapeColon() = %q", got)
	}
	if got := escapeColon("noop"); got != "noop" {
		t.Fatalf("escapeColon() = %q", got)
	}
}

func TestSpawnBuilderBuild(t *testing.T) {
	args := NewSpawnBuilder().
		Quiet(true).
		Sudo(true).
		Console(ConsoleReadOnly).
		SettingsMode(SettingsFalse).
		RootOverlays([]string{"/layers/a", "/layers/b"}).
		Bind("/src", "/dst").
		BindRO("/ro-src", "/ro-dst").
		Directory("/layers/a").
		Setenv("FOO", "bar").
		Arg("/raptor-agent").
		Arg("/tmp/sock").
		Build()

	want := []string{
		"sudo", "systemd-nspawn", "-q",
		"--console", "read-only",
		"--settings", "false",
		"--overlay", "/layers/a:/layers/b:/",
		"--bind", "/src:/dst",
		"--bind-ro", "/ro-src:/ro-dst",
		"-D", "/layers/a",
		"--setenv", "FOO=bar",
		"/raptor-agent", "/tmp/sock",
	}

	if !reflect.DeepEqual(args, want) {
		t.Fatalf("Build() = %v, want %v", args, want)
	}
}

func TestSpawnBuilderMinimal(t *testing.T) {
	args := NewSpawnBuilder().Arg("systemd-nspawn-placeholder").Build()
	if len(args) != 2 || args[0] != "systemd-nspawn" {
		t.Fatalf("Build() = %v", args)
	}
}

func TestSpawnBuilderExtraOverlay(t *testing.T) {
	args := NewSpawnBuilder().
		RootOverlays([]string{"/root/a"}).
		Overlay([]string{"/mnt/x", "/mnt/y"}, "/srv/data").
		Arg("x").
		Build()

	want := []string{
		"systemd-nspawn",
		"--overlay", "/root/a:/",
		"--overlay", "/mnt/x:/mnt/y:/srv/data",
		"x",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("Build() = %v, want %v", args, want)
	}
}

func TestSpawnBuilderEscapesOverlayColons(t *testing.T) {
	args := NewSpawnBuilder().RootOverlay("/path:with:colons").Arg("x").Build()
	found := false
	for i, a := range args {
		if a == "--overlay" {
			found = true
			if args[i+1] != `/path\:with\:colons:/` {
				t.Fatalf("overlay arg = %q", args[i+1])
			}
		}
	}
	if !found {
		t.Fatal("expected --overlay in Build() output")
	}
}
