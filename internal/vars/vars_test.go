package vars

import (
	"testing"

	"github.com/natanmedeiros/dynalias/internal/model"
)

func TestParseAppVar(t *testing.T) {
	tests := []struct {
		token    string
		want     AppVar
		wantOK   bool
	}{
		{"$${envs.name}", AppVar{Source: "envs", Key: "name"}, true},
		{"$${envs[2].url}", AppVar{Source: "envs", Key: "url", Index: 2, HasIndex: true}, true},
		{"$${locals.token}", AppVar{Source: "locals", Key: "token"}, true},
		{"${envs}", AppVar{}, false},
		{"$${envs}", AppVar{}, false},
		{"plain", AppVar{}, false},
		{"x$${envs.name}", AppVar{}, false}, // not the whole token
	}
	for _, tt := range tests {
		got, ok := ParseAppVar(tt.token)
		if ok != tt.wantOK {
			t.Errorf("ParseAppVar(%q) ok = %v, want %v", tt.token, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseAppVar(%q) = %+v, want %+v", tt.token, got, tt.want)
		}
	}
}

func TestParseUserVar(t *testing.T) {
	if name, ok := ParseUserVar("${db}"); !ok || name != "db" {
		t.Errorf("ParseUserVar(${db}) = %q, %v", name, ok)
	}
	// An app variable must not parse as a user variable.
	if _, ok := ParseUserVar("$${envs.name}"); ok {
		t.Error("ParseUserVar accepted an app variable")
	}
	if _, ok := ParseUserVar("db"); ok {
		t.Error("ParseUserVar accepted a plain token")
	}
}

func TestExtractAppVars(t *testing.T) {
	got := ExtractAppVars(`curl $${envs.url}/api -H "X-Env: $${envs.name}" $${hosts[1].addr}`)
	want := []AppVar{
		{Source: "envs", Key: "url"},
		{Source: "envs", Key: "name"},
		{Source: "hosts", Key: "addr", Index: 1, HasIndex: true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d vars, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("var[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestResolveAppVarsListMode(t *testing.T) {
	// Once matching bound one row, every non-indexed reference to the
	// same source must reuse that exact row, not row 0.
	rows := []model.Row{
		{"name": "dev", "url": "u1"},
		{"name": "prod", "url": "u2"},
	}
	ctx := AppContext{
		Resolve: func(name string) []model.Row { return rows },
		Context: map[string]model.Row{"envs": rows[1]},
	}
	got := ResolveAppVars("deploy $${envs.url}", ctx)
	if got != "deploy u2" {
		t.Errorf("list mode: got %q, want %q", got, "deploy u2")
	}

	// An explicit index forces direct mode even with a context row.
	got = ResolveAppVars("deploy $${envs[0].url}", ctx)
	if got != "deploy u1" {
		t.Errorf("explicit index: got %q, want %q", got, "deploy u1")
	}
}

func TestResolveAppVarsDirectMode(t *testing.T) {
	rows := []model.Row{{"host": "a"}, {"host": "b"}}
	ctx := AppContext{Resolve: func(string) []model.Row { return rows }}

	if got := ResolveAppVars("ssh $${hosts.host}", ctx); got != "ssh a" {
		t.Errorf("default index: got %q", got)
	}
	if got := ResolveAppVars("ssh $${hosts[1].host}", ctx); got != "ssh b" {
		t.Errorf("indexed: got %q", got)
	}
	// Out of bounds and missing keys leave the placeholder visible.
	if got := ResolveAppVars("ssh $${hosts[9].host}", ctx); got != "ssh $${hosts[9].host}" {
		t.Errorf("out of bounds: got %q", got)
	}
	if got := ResolveAppVars("ssh $${hosts.user}", ctx); got != "ssh $${hosts.user}" {
		t.Errorf("missing key: got %q", got)
	}
}

func TestResolveAppVarsLocals(t *testing.T) {
	locals := map[string]string{"token": "abc123"}
	ctx := AppContext{
		Locals: func(key string) (string, bool) {
			v, ok := locals[key]
			return v, ok
		},
	}
	if got := ResolveAppVars("auth $${locals.token}", ctx); got != "auth abc123" {
		t.Errorf("locals hit: got %q", got)
	}
	if got := ResolveAppVars("auth $${locals.missing}", ctx); got != "auth $${locals.missing}" {
		t.Errorf("locals miss: got %q", got)
	}
}

func TestResolveAppVarsNumericValues(t *testing.T) {
	rows := []model.Row{{"port": float64(8080)}}
	ctx := AppContext{Resolve: func(string) []model.Row { return rows }}
	if got := ResolveAppVars("curl host:$${svc.port}", ctx); got != "curl host:8080" {
		t.Errorf("numeric field: got %q", got)
	}
}

func TestResolveUserVars(t *testing.T) {
	words := map[string]string{"db": "orders", "env": "prod"}
	got := ResolveUserVars("psql -d ${db} -h ${env} ${missing}", words)
	want := "psql -d orders -h prod ${missing}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// App-variable placeholders must survive user-var substitution.
	got = ResolveUserVars("run $${envs.name}", words)
	if got != "run $${envs.name}" {
		t.Errorf("app var disturbed: got %q", got)
	}
}
