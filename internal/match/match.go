// Package match walks the command tree binding user-typed tokens
// against alias patterns. Matching is strictly first-match-wins in
// declaration order with no backtracking across consumed args; callers
// with overlapping alias prefixes rely on that order, so it is part of
// the contract, not an implementation detail.
package match

import (
	"strings"

	"github.com/natanmedeiros/dynalias/internal/model"
	"github.com/natanmedeiros/dynalias/internal/vars"
)

// SourceFunc lazily resolves a named source to its rows. App-variable
// alias tokens resolve their source only when a token actually reaches
// them.
type SourceFunc func(name string) []model.Row

// Bindings holds the variables bound during a match: whole rows keyed
// by source name for app variables, raw strings keyed by variable name
// for user variables.
type Bindings struct {
	Rows  map[string]model.Row
	Words map[string]string
}

func newBindings() Bindings {
	return Bindings{
		Rows:  make(map[string]model.Row),
		Words: make(map[string]string),
	}
}

func (b Bindings) merge(other Bindings) {
	for k, v := range other.Rows {
		b.Rows[k] = v
	}
	for k, v := range other.Words {
		b.Words[k] = v
	}
}

// Result is a successful match: the node chain root-first, everything
// bound along the way, whether help was requested, and the input tokens
// left unconsumed.
type Result struct {
	Chain     model.Chain
	Bindings  Bindings
	Help      bool
	Remaining []string
}

// Matcher matches input tokens against a set of root commands.
type Matcher struct {
	commands []*model.Node
	resolve  SourceFunc
}

// New returns a matcher over commands, resolving app-variable sources
// through resolve.
func New(commands []*model.Node, resolve SourceFunc) *Matcher {
	return &Matcher{commands: commands, resolve: resolve}
}

// IsHelpToken reports whether token is the help short-circuit flag.
func IsHelpToken(token string) bool {
	return token == "-h" || token == "--help"
}

// FindCommand tries each root command in declaration order and returns
// the first successful match.
func (m *Matcher) FindCommand(args []string) (Result, bool) {
	for _, cmd := range m.commands {
		if res, ok := m.tryMatch(cmd, args); ok {
			return res, true
		}
	}
	return Result{}, false
}

// MatchAliasParts pairs alias tokens with input tokens positionally.
// A -h/--help input token against a variable alias token short-circuits
// the scan with help=true; static tokens require exact equality and
// cannot satisfy help. If the input is shorter than the alias (and no
// help short-circuit fired) the match fails.
func (m *Matcher) MatchAliasParts(aliasTokens, inputTokens []string) (matched bool, b Bindings, help bool) {
	b = newBindings()

	n := len(aliasTokens)
	if len(inputTokens) < n {
		n = len(inputTokens)
	}

	for i := 0; i < n; i++ {
		aliasToken, inputToken := aliasTokens[i], inputTokens[i]

		if appVar, ok := vars.ParseAppVar(aliasToken); ok {
			if IsHelpToken(inputToken) {
				return true, b, true
			}
			row, ok := m.findRow(appVar, inputToken)
			if !ok {
				return false, Bindings{}, false
			}
			b.Rows[appVar.Source] = row
			continue
		}

		if name, ok := vars.ParseUserVar(aliasToken); ok {
			if IsHelpToken(inputToken) {
				return true, b, true
			}
			b.Words[name] = inputToken
			continue
		}

		if aliasToken != inputToken {
			return false, Bindings{}, false
		}
	}

	if len(inputTokens) < len(aliasTokens) {
		return false, Bindings{}, false
	}
	return true, b, false
}

// findRow scans the source's rows for the one whose key field
// stringifies equal to the typed token. The explicit index of an alias
// token is ignored; matching always scans all rows.
func (m *Matcher) findRow(v vars.AppVar, token string) (model.Row, bool) {
	if m.resolve == nil {
		return nil, false
	}
	for _, row := range m.resolve(v.Source) {
		if val, ok := row.Field(v.Key); ok && val == token {
			return row, true
		}
	}
	return nil, false
}

// tryMatch matches node's alias against the head of args, then greedily
// consumes arg modifiers, then descends into children.
func (m *Matcher) tryMatch(node *model.Node, args []string) (Result, bool) {
	aliasTokens := node.AliasTokens()

	matched, bindings, help := m.MatchAliasParts(aliasTokens, head(args, len(aliasTokens)))
	if help {
		return Result{Chain: model.Chain{node}, Bindings: bindings, Help: true}, true
	}
	if !matched {
		return Result{}, false
	}

	remaining := args[len(aliasTokens):]
	chain := model.Chain{node}

	// Greedy arg consumption: first variant of the first arg node that
	// matches the current prefix wins, repeated until nothing matches.
	for len(remaining) > 0 && len(node.Args) > 0 {
		found := false
		for _, argNode := range node.Args {
			for _, variant := range argNode.Aliases {
				parts := strings.Fields(variant)
				argMatched, argBindings, argHelp := m.MatchAliasParts(parts, head(remaining, len(parts)))
				if argHelp {
					bindings.merge(argBindings)
					return Result{Chain: append(chain, argNode), Bindings: bindings, Help: true}, true
				}
				if argMatched {
					bindings.merge(argBindings)
					chain = append(chain, argNode)
					remaining = remaining[len(parts):]
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			break
		}
	}

	if len(remaining) > 0 {
		for _, sub := range node.Sub {
			if subRes, ok := m.tryMatch(sub, remaining); ok {
				bindings.merge(subRes.Bindings)
				return Result{
					Chain:     append(chain, subRes.Chain...),
					Bindings:  bindings,
					Help:      subRes.Help,
					Remaining: subRes.Remaining,
				}, true
			}
		}
	}

	if len(remaining) > 0 && IsHelpToken(remaining[0]) {
		return Result{Chain: chain, Bindings: bindings, Help: true}, true
	}

	return Result{Chain: chain, Bindings: bindings, Remaining: remaining}, true
}

func head(tokens []string, n int) []string {
	if len(tokens) < n {
		return tokens
	}
	return tokens[:n]
}
