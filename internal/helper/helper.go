// Package helper renders help text for matched command chains and the
// global command/source listing. Three strategies exist, selected by
// the root command's helper-type: "auto" builds a structured layout
// from the tree, "custom" concatenates the raw helper fields, and
// "markdown" renders the concatenated helper text for the terminal.
package helper

import (
	"fmt"
	"io"
	"strings"

	"github.com/natanmedeiros/dynalias/internal/model"
	"github.com/natanmedeiros/dynalias/internal/ui"
)

const (
	maxLineWidth = 80
	minSpacing   = 2
	maxSpacing   = 20
)

// Format renders help for a matched chain using the root's helper type.
func Format(chain model.Chain) string {
	switch chain.HelperType() {
	case "custom":
		return formatCustom(chain)
	case "markdown":
		return formatMarkdown(chain)
	default:
		return formatAuto(chain)
	}
}

// Print writes the formatted help with the standard header and footer.
func Print(w io.Writer, chain model.Chain) {
	fmt.Fprintf(w, "\n%s\n\n", ui.AccentBold.Render("HELPER"))
	fmt.Fprintln(w, Format(chain))
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.Hint("To display application help use dya --help"))
}

// formatCustom concatenates the raw helper text of every node in the
// matched chain.
func formatCustom(chain model.Chain) string {
	var sections []string
	for _, node := range chain {
		if node.Helper != "" {
			sections = append(sections, strings.TrimSpace(node.Helper))
		}
	}
	if len(sections) == 0 {
		return "No helper information available for this command."
	}
	return strings.Join(sections, "\n\n")
}

// formatMarkdown renders the concatenated helper text as terminal
// markdown. Rendering failures fall back to the raw text.
func formatMarkdown(chain model.Chain) string {
	raw := formatCustom(chain)
	rendered, err := ui.RenderMarkdown(raw, maxLineWidth)
	if err != nil {
		return raw
	}
	return rendered
}

// formatAuto builds the structured layout: matched path, description,
// usage line with bracketed optional parts, then args and subcommands.
func formatAuto(chain model.Chain) string {
	if len(chain) == 0 {
		return "No helper information available for this command."
	}

	target := chain[len(chain)-1]
	path := chain.Path()

	var b strings.Builder
	b.WriteString(path)
	b.WriteString("\n\n")

	b.WriteString("    Description:\n")
	writeIndented(&b, target.Helper, 8)
	b.WriteString("\n")

	b.WriteString("    Usage:\n")
	b.WriteString("        " + usageLine(chain) + "\n")

	usageTarget := lastNonArg(chain)
	if usageTarget != nil && len(usageTarget.Args) > 0 {
		b.WriteString("\n    Args:\n")
		for _, arg := range usageTarget.Args {
			b.WriteString(formatArg(arg, 8))
		}
	}
	if usageTarget != nil && len(usageTarget.Sub) > 0 {
		b.WriteString("\n    Options/Subcommands:\n")
		for _, sub := range usageTarget.Sub {
			b.WriteString(formatSub(sub, 8, path))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeIndented(b *strings.Builder, text string, indent int) {
	prefix := strings.Repeat(" ", indent)
	if text == "" {
		b.WriteString(prefix + "No description available.\n")
		return
	}
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		b.WriteString(prefix + line + "\n")
	}
}

func usageLine(chain model.Chain) string {
	path := chain.Path()
	target := lastNonArg(chain)
	if target == nil {
		return path
	}
	if optional := optionalSection(target); optional != "" {
		return path + " " + optional
	}
	return path
}

func lastNonArg(chain model.Chain) *model.Node {
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Kind != model.KindArg {
			return chain[i]
		}
	}
	return nil
}

// optionalSection builds the bracketed optional parts for a node:
// [arg1 | arg2] [sub1 [...] | sub2].
func optionalSection(node *model.Node) string {
	var parts []string

	if len(node.Args) > 0 {
		var flags []string
		for _, arg := range node.Args {
			for _, alias := range arg.Aliases {
				flags = append(flags, firstToken(alias))
			}
		}
		parts = append(parts, "["+strings.Join(flags, " | ")+"]")
	}

	if len(node.Sub) > 0 {
		var subs []string
		for _, sub := range node.Sub {
			entry := firstAlias(sub)
			if nested := optionalSection(sub); nested != "" {
				entry += " " + nested
			}
			subs = append(subs, entry)
		}
		parts = append(parts, "["+strings.Join(subs, " | ")+"]")
	}

	return strings.Join(parts, " ")
}

func formatArg(arg *model.Node, indent int) string {
	prefix := strings.Repeat(" ", indent)
	display := argDisplay(arg)
	help := strings.TrimSpace(arg.Helper)

	if help == "" {
		return prefix + display + "\n"
	}

	spacing := maxSpacing - len(display)
	if spacing < minSpacing {
		spacing = minSpacing
	}
	line := prefix + display + strings.Repeat(" ", spacing) + help
	if len(line) > maxLineWidth {
		return prefix + display + "\n" + prefix + "    " + help + "\n"
	}
	return line + "\n"
}

// argDisplay renders an arg's alias for help output. Synonym lists show
// the flag prefixes joined ("-o, --output"); a single alias keeps its
// full pattern including variables.
func argDisplay(arg *model.Node) string {
	if len(arg.Aliases) > 1 {
		flags := make([]string, 0, len(arg.Aliases))
		for _, alias := range arg.Aliases {
			flags = append(flags, firstToken(alias))
		}
		return strings.Join(flags, ", ")
	}
	return firstAlias(arg)
}

func formatSub(sub *model.Node, indent int, pathPrefix string) string {
	prefix := strings.Repeat(" ", indent)
	inner := strings.Repeat(" ", indent+4)
	fullPath := firstAlias(sub)
	if pathPrefix != "" {
		fullPath = pathPrefix + " " + fullPath
	}

	var b strings.Builder
	b.WriteString(prefix + firstAlias(sub) + "\n\n")

	b.WriteString(inner + "Description:\n")
	if sub.Helper != "" {
		for _, line := range strings.Split(strings.TrimSpace(sub.Helper), "\n") {
			b.WriteString(inner + "    " + line + "\n")
		}
	} else {
		b.WriteString(inner + "    No description available.\n")
	}
	b.WriteString("\n")

	b.WriteString(inner + "Usage:\n")
	if optional := optionalSection(sub); optional != "" {
		b.WriteString(inner + "    " + fullPath + " " + optional + "\n")
	} else {
		b.WriteString(inner + "    " + fullPath + "\n")
	}

	if len(sub.Args) > 0 {
		b.WriteString("\n" + inner + "Args:\n")
		for _, arg := range sub.Args {
			b.WriteString(formatArg(arg, indent+8))
		}
	}
	if len(sub.Sub) > 0 {
		b.WriteString("\n" + inner + "Options/Subcommands:\n")
		for _, nested := range sub.Sub {
			b.WriteString(formatSub(nested, indent+8, fullPath))
		}
	}

	b.WriteString("\n")
	return b.String()
}

func firstAlias(n *model.Node) string {
	if len(n.Aliases) > 0 {
		return n.Aliases[0]
	}
	return ""
}

func firstToken(alias string) string {
	fields := strings.Fields(alias)
	if len(fields) == 0 {
		return alias
	}
	return fields[0]
}

// Global writes the global help: every configured source and command.
func Global(w io.Writer, catalog *model.Catalog) {
	fmt.Fprintf(w, "\n%s\n\n", ui.AccentBold.Render("Dynamic Alias Helper"))

	if names := catalog.StaticNames(); len(names) > 0 {
		fmt.Fprintln(w, ui.Bold.Render("Dicts (Static):"))
		for _, name := range names {
			fmt.Fprintf(w, "  - %s\n", ui.Accent.Render(name))
		}
		fmt.Fprintln(w)
	}

	if names := catalog.DynamicNames(); len(names) > 0 {
		fmt.Fprintln(w, ui.Bold.Render("Dynamic Dicts:"))
		for _, name := range names {
			fmt.Fprintf(w, "  - %s\n", ui.Accent.Render(name))
		}
		fmt.Fprintln(w)
	}

	if len(catalog.Commands) > 0 {
		fmt.Fprintln(w, ui.Bold.Render("Commands:"))
		for _, cmd := range catalog.Commands {
			alias := ""
			if len(cmd.Aliases) > 0 {
				alias = cmd.Aliases[0]
			}
			fmt.Fprintf(w, "  %s (alias: %s)\n", ui.Bold.Render(cmd.Name), ui.Accent.Render(alias))
			if cmd.Helper != "" {
				for _, line := range strings.Split(strings.TrimSpace(cmd.Helper), "\n") {
					fmt.Fprintf(w, "    %s\n", line)
				}
			}
			fmt.Fprintln(w, strings.Repeat("-", 20))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.Hint("To display application help use dya --help"))
}
