package match

import (
	"sort"
	"strings"

	"github.com/natanmedeiros/dynalias/internal/model"
	"github.com/natanmedeiros/dynalias/internal/vars"
)

// Completions returns the possible next tokens after the given fully
// typed tokens, for interactive autocompletion. Static alias tokens
// complete to their literal, app-variable tokens to the key-field
// values of their source (paying the resolve cost on a cache miss),
// and user-variable tokens to nothing.
func (m *Matcher) Completions(tokens []string) []string {
	seen := make(map[string]bool)
	for _, cmd := range m.commands {
		m.completeNode(cmd, tokens, seen)
	}

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (m *Matcher) completeNode(node *model.Node, tokens []string, seen map[string]bool) {
	aliasTokens := node.AliasTokens()

	for i, aliasToken := range aliasTokens {
		if i == len(tokens) {
			m.expand(aliasToken, seen)
			return
		}
		if !m.tokenSatisfies(aliasToken, tokens[i]) {
			return
		}
	}

	remaining := tokens[len(aliasTokens):]

	// Arg modifiers can repeat, so they stay on offer until one stops
	// matching the prefix.
	for len(remaining) > 0 {
		consumed := 0
		for _, argNode := range node.Args {
			for _, variant := range argNode.Aliases {
				parts := strings.Fields(variant)
				if n := m.prefixLen(parts, remaining, seen); n > 0 {
					consumed = n
					break
				}
			}
			if consumed > 0 {
				break
			}
		}
		if consumed == 0 {
			break
		}
		remaining = remaining[consumed:]
	}

	if len(remaining) == 0 {
		for _, argNode := range node.Args {
			for _, variant := range argNode.Aliases {
				if parts := strings.Fields(variant); len(parts) > 0 {
					m.expand(parts[0], seen)
				}
			}
		}
		for _, sub := range node.Sub {
			if subTokens := sub.AliasTokens(); len(subTokens) > 0 {
				m.expand(subTokens[0], seen)
			}
		}
		return
	}

	for _, sub := range node.Sub {
		m.completeNode(sub, remaining, seen)
	}
}

// prefixLen reports how many input tokens a fully satisfied alias
// pattern consumes, or 0. A partially satisfied pattern contributes its
// next token to the candidate set instead.
func (m *Matcher) prefixLen(aliasTokens, input []string, seen map[string]bool) int {
	for i, aliasToken := range aliasTokens {
		if i == len(input) {
			m.expand(aliasToken, seen)
			return 0
		}
		if !m.tokenSatisfies(aliasToken, input[i]) {
			return 0
		}
	}
	return len(aliasTokens)
}

func (m *Matcher) tokenSatisfies(aliasToken, token string) bool {
	if appVar, ok := vars.ParseAppVar(aliasToken); ok {
		_, ok := m.findRow(appVar, token)
		return ok
	}
	if _, ok := vars.ParseUserVar(aliasToken); ok {
		return true
	}
	return aliasToken == token
}

func (m *Matcher) expand(aliasToken string, seen map[string]bool) {
	if appVar, ok := vars.ParseAppVar(aliasToken); ok {
		if m.resolve == nil {
			return
		}
		for _, row := range m.resolve(appVar.Source) {
			if val, ok := row.Field(appVar.Key); ok {
				seen[val] = true
			}
		}
		return
	}
	if _, ok := vars.ParseUserVar(aliasToken); ok {
		return
	}
	seen[aliasToken] = true
}
