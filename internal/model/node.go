// Package model defines the command tree and data-source catalog loaded
// from configuration. The structures here are built once at startup and
// treated as read-only by every other package.
package model

import "strings"

// NodeKind distinguishes the three shapes a command tree node can take.
type NodeKind int

const (
	// KindCommand is a root command. Only roots carry Timeout, Strict,
	// and HelperType; nested nodes inherit them through the chain.
	KindCommand NodeKind = iota

	// KindSub is a nested subcommand.
	KindSub

	// KindArg is an argument modifier. Args never have children or
	// nested args of their own.
	KindArg
)

// Node is a single entry in the command tree: a root command, a
// subcommand, or an argument modifier. The shapes share one struct with
// a kind tag; root-only fields are zero on nested nodes and are read by
// walking the matched chain back to its first element.
type Node struct {
	Kind NodeKind

	// Name is the display name. Only set on root commands.
	Name string

	// Aliases holds the alias pattern(s). Commands and subcommands have
	// exactly one; argument nodes may declare synonyms (e.g. "-o" and
	// "--output"). Each alias is a whitespace-delimited token pattern.
	Aliases []string

	// Command is the template fragment this node contributes to the
	// final command line.
	Command string

	// Helper is optional free-form help text.
	Helper string

	Sub  []*Node
	Args []*Node

	// SetLocals requests that the executed command's stdout be parsed
	// as a JSON object and persisted into the locals store.
	SetLocals bool

	// Root-only fields.
	Timeout    int // seconds; 0 means unbounded
	Strict     bool
	HelperType string // "auto", "custom", or "markdown"
}

// AliasTokens returns the token pattern of the node's primary alias.
func (n *Node) AliasTokens() []string {
	if len(n.Aliases) == 0 {
		return nil
	}
	return strings.Fields(n.Aliases[0])
}

// Chain is an ordered path of matched nodes, root first. Argument nodes
// appear interleaved after the node whose args they matched.
type Chain []*Node

// Root returns the first node of the chain, or nil for an empty chain.
func (c Chain) Root() *Node {
	if len(c) == 0 {
		return nil
	}
	return c[0]
}

// Strict reports whether the chain's root command is strict.
func (c Chain) Strict() bool {
	root := c.Root()
	return root != nil && root.Strict
}

// Timeout returns the root command's execution timeout in seconds.
func (c Chain) Timeout() int {
	root := c.Root()
	if root == nil {
		return 0
	}
	return root.Timeout
}

// HelperType returns the root command's helper type, defaulting to "auto".
func (c Chain) HelperType() string {
	root := c.Root()
	if root == nil || root.HelperType == "" {
		return "auto"
	}
	return root.HelperType
}

// SetLocals reports whether any node in the chain requests set-locals.
func (c Chain) SetLocals() bool {
	for _, n := range c {
		if n.SetLocals {
			return true
		}
	}
	return false
}

// Template joins each node's command fragment into the full template.
func (c Chain) Template() string {
	parts := make([]string, 0, len(c))
	for _, n := range c {
		parts = append(parts, n.Command)
	}
	return strings.Join(parts, " ")
}

// Path returns the space-joined aliases of the command and subcommand
// nodes in the chain, used as the matched path in help output.
func (c Chain) Path() string {
	parts := make([]string, 0, len(c))
	for _, n := range c {
		if n.Kind == KindArg {
			continue
		}
		if len(n.Aliases) > 0 {
			parts = append(parts, n.Aliases[0])
		}
	}
	return strings.Join(parts, " ")
}
