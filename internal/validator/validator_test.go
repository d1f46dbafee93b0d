package validator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/natanmedeiros/dynalias/internal/config"
	"github.com/natanmedeiros/dynalias/internal/model"
)

func fileWith(catalog *model.Catalog) *config.AliasFile {
	return &config.AliasFile{Path: "test.yaml", Catalog: catalog}
}

func staticSource(name string, rows ...model.Row) *model.StaticSource {
	return &model.StaticSource{Name: name, Rows: rows}
}

func dynamicSource(name, command string) *model.DynamicSource {
	return &model.DynamicSource{
		Name:    name,
		Command: command,
		Mapping: map[string]string{"name": "name"},
	}
}

func command(name, alias, cmd string) *model.Node {
	return &model.Node{Kind: model.KindCommand, Name: name, Aliases: []string{alias}, Command: cmd}
}

func failureMessages(r *Report) []string {
	var out []string
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res.Message)
		}
	}
	return out
}

func TestValidCatalogPasses(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Statics["envs"] = staticSource("envs", model.Row{"name": "dev", "url": "u1"})
	catalog.Dynamics["pods"] = dynamicSource("pods", "kubectl get pods -o json")
	catalog.Commands = append(catalog.Commands,
		command("Connect", "con $${envs.name}", "ssh $${envs.url}"))

	report := Validate(fileWith(catalog))
	if !report.Passed() {
		t.Fatalf("valid catalog failed: %v", failureMessages(report))
	}
}

func TestEmptyDataAndMapping(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Statics["empty"] = staticSource("empty")
	catalog.Dynamics["nomap"] = &model.DynamicSource{Name: "nomap", Command: "echo []"}

	report := Validate(fileWith(catalog))
	if report.FailedCount() != 2 {
		t.Fatalf("failures = %d, want 2: %v", report.FailedCount(), failureMessages(report))
	}
}

func TestReservedSourceName(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Statics["locals"] = staticSource("locals", model.Row{"k": "v"})

	report := Validate(fileWith(catalog))
	if report.Passed() {
		t.Fatal("reserved name 'locals' accepted")
	}
}

func TestUndefinedReference(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Commands = append(catalog.Commands,
		command("Broken", "go $${missing.name}", "echo $${missing.url}"))

	report := Validate(fileWith(catalog))
	if report.Passed() {
		t.Fatal("undefined source reference accepted")
	}
	found := false
	for _, msg := range failureMessages(report) {
		if strings.Contains(msg, `undefined source "missing"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("no undefined-source failure: %v", failureMessages(report))
	}
}

func TestLocalsReferenceIsValid(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Commands = append(catalog.Commands,
		command("Auth", "auth", "curl -H 'X-Token: $${locals.token}'"))

	report := Validate(fileWith(catalog))
	if !report.Passed() {
		t.Fatalf("locals reference rejected: %v", failureMessages(report))
	}
}

func TestCircularDynamicReference(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Dynamics["a"] = dynamicSource("a", "fetch $${b.id}")
	catalog.Dynamics["b"] = dynamicSource("b", "fetch $${a.id}")

	report := Validate(fileWith(catalog))
	if report.Passed() {
		t.Fatal("cycle accepted")
	}
	found := false
	for _, msg := range failureMessages(report) {
		if strings.Contains(msg, "circular reference") {
			found = true
		}
	}
	if !found {
		t.Errorf("no cycle failure: %v", failureMessages(report))
	}
}

func TestSelfReferenceIsCycle(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Dynamics["a"] = dynamicSource("a", "fetch $${a.id}")

	report := Validate(fileWith(catalog))
	if report.Passed() {
		t.Fatal("self-reference accepted")
	}
}

func TestStaticDependencyBreaksCycle(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Statics["seed"] = staticSource("seed", model.Row{"id": "1"})
	catalog.Dynamics["a"] = dynamicSource("a", "fetch $${seed.id}")

	report := Validate(fileWith(catalog))
	if !report.Passed() {
		t.Fatalf("static dependency flagged: %v", failureMessages(report))
	}
}

func TestStaticIndexBounds(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Statics["envs"] = staticSource("envs", model.Row{"name": "dev"})
	catalog.Commands = append(catalog.Commands,
		command("OOB", "x", "echo $${envs[3].name}"))

	report := Validate(fileWith(catalog))
	if report.Passed() {
		t.Fatal("out-of-bounds index accepted")
	}
}

func TestStaticMissingKey(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Statics["envs"] = staticSource("envs", model.Row{"name": "dev"})
	catalog.Commands = append(catalog.Commands,
		command("BadKey", "x", "echo $${envs.url}"))

	report := Validate(fileWith(catalog))
	if report.Passed() {
		t.Fatal("missing key accepted")
	}
}

func TestDynamicIndexSkipped(t *testing.T) {
	// Dynamic source shape is unknown offline; index checks don't apply.
	catalog := model.NewCatalog()
	catalog.Dynamics["pods"] = dynamicSource("pods", "kubectl get pods -o json")
	catalog.Commands = append(catalog.Commands,
		command("Logs", "logs", "kubectl logs $${pods[5].name}"))

	report := Validate(fileWith(catalog))
	if !report.Passed() {
		t.Fatalf("dynamic index reference flagged: %v", failureMessages(report))
	}
}

func TestArgWithChildrenRejected(t *testing.T) {
	cmd := command("Nested", "n", "echo")
	cmd.Args = []*model.Node{{
		Kind:    model.KindArg,
		Aliases: []string{"-f"},
		Command: "--force",
		Sub:     []*model.Node{{Kind: model.KindSub, Aliases: []string{"x"}, Command: "y"}},
	}}
	catalog := model.NewCatalog()
	catalog.Commands = append(catalog.Commands, cmd)

	report := Validate(fileWith(catalog))
	if report.Passed() {
		t.Fatal("arg with children accepted")
	}
}

func TestPrintReport(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Commands = append(catalog.Commands, command("OK", "ok", "echo ok"))
	report := Validate(fileWith(catalog))

	var buf bytes.Buffer
	report.Print(&buf)
	out := buf.String()
	if !strings.Contains(out, "test.yaml") {
		t.Error("report missing config path")
	}
	if !strings.Contains(out, "All") {
		t.Errorf("report missing summary: %s", out)
	}

	buf.Reset()
	report.PrintErrors(&buf)
	if buf.Len() != 0 {
		t.Errorf("PrintErrors emitted output for a passing report: %s", buf.String())
	}
}
