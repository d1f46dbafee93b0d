// Package vars implements the two variable grammars used in alias
// patterns and command templates:
//
//	${name}              user variable, captures a raw typed token
//	$${source.key}       app variable, pulls a field from a source row
//	$${source[N].key}    app variable with an explicit row index
//
// Substitution never fails: unresolved placeholders are left verbatim
// in the output so a broken reference is visible in the final command
// line instead of silently vanishing.
package vars

import (
	"regexp"
	"strconv"

	"github.com/natanmedeiros/dynalias/internal/model"
	"github.com/natanmedeiros/dynalias/internal/ui"
)

var (
	appVarRe  = regexp.MustCompile(`\$\$\{(\w+)(?:\[(\d+)\])?\.(\w+)\}`)
	userVarRe = regexp.MustCompile(`\$\{(\w+)\}`)
)

// AppVar is one parsed $${source.key} or $${source[N].key} reference.
type AppVar struct {
	Source   string
	Key      string
	Index    int
	HasIndex bool
}

// ParseAppVar reports whether token is exactly one app variable.
func ParseAppVar(token string) (AppVar, bool) {
	m := appVarRe.FindStringSubmatch(token)
	if m == nil || m[0] != token {
		return AppVar{}, false
	}
	return newAppVar(m), true
}

// ParseUserVar reports whether token is exactly one user variable and
// returns its name.
func ParseUserVar(token string) (string, bool) {
	m := userVarRe.FindStringSubmatch(token)
	if m == nil || m[0] != token {
		return "", false
	}
	return m[1], true
}

// ExtractAppVars returns every app variable referenced in text, in
// order of appearance. Used to build the dynamic-source dependency
// edges at resolve time and by offline validation.
func ExtractAppVars(text string) []AppVar {
	matches := appVarRe.FindAllStringSubmatch(text, -1)
	out := make([]AppVar, 0, len(matches))
	for _, m := range matches {
		out = append(out, newAppVar(m))
	}
	return out
}

func newAppVar(m []string) AppVar {
	v := AppVar{Source: m[1], Key: m[3]}
	if m[2] != "" {
		v.Index, _ = strconv.Atoi(m[2])
		v.HasIndex = true
	}
	return v
}

// AppContext carries the lookups available during app-variable
// substitution. Any field may be nil; a nil lookup simply never
// resolves.
type AppContext struct {
	// Resolve lazily resolves a named source to its rows.
	Resolve func(name string) []model.Row

	// Context holds rows already bound during alias matching. A source
	// present here is resolved in list mode: the bound row is reused
	// for every reference without an explicit index so one invocation
	// always sees a consistent row.
	Context map[string]model.Row

	// Locals resolves $${locals.key} references.
	Locals func(key string) (string, bool)
}

// ResolveAppVars expands every app variable in text. Resolution order
// per reference: the reserved locals source, then the matching context
// row (list mode, only without an explicit index), then the full source
// via Resolve using index N or 0 (direct mode). Unresolvable
// references are left untouched; an out-of-bounds index additionally
// emits a diagnostic.
func ResolveAppVars(text string, ctx AppContext) string {
	return appVarRe.ReplaceAllStringFunc(text, func(placeholder string) string {
		m := appVarRe.FindStringSubmatch(placeholder)
		v := newAppVar(m)

		if v.Source == model.LocalsSource && ctx.Locals != nil {
			if val, ok := ctx.Locals(v.Key); ok {
				return val
			}
			return placeholder
		}

		if !v.HasIndex {
			if row, ok := ctx.Context[v.Source]; ok {
				if val, ok := row.Field(v.Key); ok {
					return val
				}
				return placeholder
			}
		}

		if ctx.Resolve == nil {
			return placeholder
		}
		rows := ctx.Resolve(v.Source)
		if len(rows) == 0 {
			return placeholder
		}
		if v.Index >= len(rows) {
			ui.Warnf("index %d out of bounds for source %q (size %d)", v.Index, v.Source, len(rows))
			return placeholder
		}
		if val, ok := rows[v.Index].Field(v.Key); ok {
			return val
		}
		return placeholder
	})
}

// ResolveUserVars expands every ${name} in text from the bound user
// variables. Unresolved names stay verbatim.
func ResolveUserVars(text string, words map[string]string) string {
	return userVarRe.ReplaceAllStringFunc(text, func(placeholder string) string {
		m := userVarRe.FindStringSubmatch(placeholder)
		if val, ok := words[m[1]]; ok {
			return val
		}
		return placeholder
	})
}
