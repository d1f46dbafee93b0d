package executor

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/natanmedeiros/dynalias/internal/cache"
	"github.com/natanmedeiros/dynalias/internal/cachecrypt"
	"github.com/natanmedeiros/dynalias/internal/match"
	"github.com/natanmedeiros/dynalias/internal/model"
	"github.com/natanmedeiros/dynalias/internal/resolver"
)

func testKey() ([]byte, error) {
	return cachecrypt.DeriveKey("test-machine"), nil
}

func testStore(t *testing.T) *cache.Store {
	t.Helper()
	s := cache.New(filepath.Join(t.TempDir(), "dya.json"), true)
	s.SetKeyDerivation(testKey)
	return s
}

type fakeSpawn struct {
	commands []string
	captured []bool
	stdout   string
	err      error
	onSpawn  func()
}

func (f *fakeSpawn) spawn(_ context.Context, command string, capture bool) ([]byte, error) {
	f.commands = append(f.commands, command)
	f.captured = append(f.captured, capture)
	if f.onSpawn != nil {
		f.onSpawn()
	}
	return []byte(f.stdout), f.err
}

func newTestExecutor(t *testing.T, catalog *model.Catalog, spawn *fakeSpawn) (*Executor, *cache.Store) {
	t.Helper()
	store := testStore(t)
	res := resolver.New(catalog, store)
	e := New(res, store)
	e.SetSpawner(spawn.spawn)
	e.SetOutput(&bytes.Buffer{})
	return e, store
}

func chainResult(root *model.Node, remaining ...string) match.Result {
	return match.Result{
		Chain: model.Chain{root},
		Bindings: match.Bindings{
			Rows:  map[string]model.Row{},
			Words: map[string]string{},
		},
		Remaining: remaining,
	}
}

func TestStrictRejectsTrailingTokens(t *testing.T) {
	spawn := &fakeSpawn{}
	root := &model.Node{Kind: model.KindCommand, Aliases: []string{"ls"}, Command: "ls", Strict: true}
	e, _ := newTestExecutor(t, model.NewCatalog(), spawn)

	e.Execute(chainResult(root, "extra"))
	if len(spawn.commands) != 0 {
		t.Fatalf("strict violation still spawned: %v", spawn.commands)
	}
}

func TestNonStrictAppendsQuotedTokens(t *testing.T) {
	spawn := &fakeSpawn{}
	root := &model.Node{Kind: model.KindCommand, Aliases: []string{"ls"}, Command: "ls -la"}
	e, _ := newTestExecutor(t, model.NewCatalog(), spawn)

	e.Execute(chainResult(root, "my dir", "-z"))
	if len(spawn.commands) != 1 {
		t.Fatalf("spawn count = %d", len(spawn.commands))
	}
	want := `ls -la 'my dir' '-z'`
	if spawn.commands[0] != want {
		t.Errorf("command = %q, want %q", spawn.commands[0], want)
	}
	if spawn.captured[0] {
		t.Error("plain execution captured stdout")
	}
}

func TestSubstitutionUsesBindings(t *testing.T) {
	catalog := model.NewCatalog()
	catalog.Statics["envs"] = &model.StaticSource{
		Name: "envs",
		Rows: []model.Row{{"name": "dev", "url": "u1"}, {"name": "prod", "url": "u2"}},
	}
	spawn := &fakeSpawn{}
	root := &model.Node{
		Kind:    model.KindCommand,
		Aliases: []string{"consume $${envs.name}"},
		Command: "curl $${envs.url}/api?user=${user}",
	}
	e, _ := newTestExecutor(t, catalog, spawn)

	res := chainResult(root)
	res.Bindings.Rows["envs"] = model.Row{"name": "prod", "url": "u2"}
	res.Bindings.Words["user"] = "natan"
	e.Execute(res)

	if spawn.commands[0] != "curl u2/api?user=natan" {
		t.Errorf("command = %q", spawn.commands[0])
	}
}

func TestSetLocalsPersistsObject(t *testing.T) {
	spawn := &fakeSpawn{stdout: `{"token": "abc", "port": 8080}`}
	root := &model.Node{Kind: model.KindCommand, Aliases: []string{"login"}, Command: "login-cmd", SetLocals: true}
	e, store := newTestExecutor(t, model.NewCatalog(), spawn)

	e.Execute(chainResult(root))
	if !spawn.captured[0] {
		t.Fatal("set-locals did not capture stdout")
	}
	if v, _ := store.Local("token"); v != "abc" {
		t.Errorf("local token = %q, want abc", v)
	}
	if v, _ := store.Local("port"); v != "8080" {
		t.Errorf("local port = %q, want 8080", v)
	}
}

func TestSetLocalsRejectsNonObject(t *testing.T) {
	for _, output := range []string{`[1, 2]`, `"scalar"`, `not json`, ``} {
		spawn := &fakeSpawn{stdout: output}
		root := &model.Node{Kind: model.KindCommand, Aliases: []string{"login"}, Command: "login-cmd", SetLocals: true}
		e, store := newTestExecutor(t, model.NewCatalog(), spawn)

		e.Execute(chainResult(root))
		if len(store.Locals()) != 0 {
			t.Errorf("output %q: locals = %v, want none", output, store.Locals())
		}
	}
}

func TestCacheSyncAroundSpawn(t *testing.T) {
	// A child process writes a local into the shared cache file while
	// running; the parent must pick it up in its post-spawn sync.
	spawn := &fakeSpawn{}
	root := &model.Node{Kind: model.KindCommand, Aliases: []string{"go"}, Command: "child"}
	e, store := newTestExecutor(t, model.NewCatalog(), spawn)

	spawn.onSpawn = func() {
		child := cache.New(store.Path(), true)
		child.SetKeyDerivation(testKey)
		if err := child.Load(); err != nil {
			t.Fatalf("child load: %v", err)
		}
		child.SetLocal("from-child", "yes")
	}

	e.Execute(chainResult(root))
	if v, ok := store.Local("from-child"); !ok || v != "yes" {
		t.Errorf("parent missed child write: %q %v", v, ok)
	}
}

func TestSpawnErrorStillSyncsCache(t *testing.T) {
	spawn := &fakeSpawn{err: context.DeadlineExceeded}
	root := &model.Node{Kind: model.KindCommand, Aliases: []string{"slow"}, Command: "sleep 99", Timeout: 1}
	e, store := newTestExecutor(t, model.NewCatalog(), spawn)

	spawn.onSpawn = func() {
		child := cache.New(store.Path(), true)
		child.SetKeyDerivation(testKey)
		_ = child.Load()
		child.SetLocal("survived", "yes")
	}

	e.Execute(chainResult(root))
	if _, ok := store.Local("survived"); !ok {
		t.Error("cache sync skipped on spawn failure")
	}
}

func TestChainTemplateJoin(t *testing.T) {
	spawn := &fakeSpawn{}
	root := &model.Node{Kind: model.KindCommand, Aliases: []string{"k"}, Command: "kubectl"}
	sub := &model.Node{Kind: model.KindSub, Aliases: []string{"pods"}, Command: "get pods"}
	e, _ := newTestExecutor(t, model.NewCatalog(), spawn)

	res := match.Result{
		Chain:    model.Chain{root, sub},
		Bindings: match.Bindings{Rows: map[string]model.Row{}, Words: map[string]string{}},
	}
	e.Execute(res)
	if spawn.commands[0] != "kubectl get pods" {
		t.Errorf("joined command = %q", spawn.commands[0])
	}
}

func TestLocalsSubstitution(t *testing.T) {
	spawn := &fakeSpawn{}
	root := &model.Node{Kind: model.KindCommand, Aliases: []string{"auth"}, Command: "curl -H 'X-Token: $${locals.token}'"}
	e, store := newTestExecutor(t, model.NewCatalog(), spawn)
	store.SetLocal("token", "secret123")

	e.Execute(chainResult(root))
	if !strings.Contains(spawn.commands[0], "secret123") {
		t.Errorf("locals not substituted: %q", spawn.commands[0])
	}
}
