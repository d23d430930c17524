package plan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRulesParsesRunAndGroup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raptor.toml")
	content := `
[raptor.link]
tools = { source = "/opt/tools" }

[run.build-app]
target = "app"
input = ["data"]
output = "out/app.img"
cache = ["deps"]
args = ["--release"]
entrypoint = ["/bin/build"]
state_dir = "state"

[run.build-app.env]
FOO = "bar"

[group.ci]
run = ["build-app"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}

	link, ok := rules.Raptor.Link["tools"]
	if !ok || link.Source != "/opt/tools" {
		t.Fatalf("Raptor.Link[tools] = %+v", rules.Raptor.Link)
	}

	run, ok := rules.Run["build-app"]
	if !ok {
		t.Fatal("missing run.build-app")
	}
	if run.Target != "app" || run.Output != "out/app.img" {
		t.Fatalf("run = %+v", run)
	}
	if len(run.Input) != 1 || run.Input[0] != "data" {
		t.Fatalf("run.Input = %v", run.Input)
	}
	if run.Env["FOO"] != "bar" {
		t.Fatalf("run.Env = %v", run.Env)
	}

	group, ok := rules.Group["ci"]
	if !ok || len(group.Run) != 1 || group.Run[0] != "build-app" {
		t.Fatalf("group.ci = %+v", group)
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules("/nonexistent/raptor.toml"); err == nil {
		t.Fatal("expected an error for a missing rule file")
	}
}
