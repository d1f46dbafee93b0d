// Package cli implements the command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/natanmedeiros/dynalias/internal/helper"
	"github.com/natanmedeiros/dynalias/internal/match"
	"github.com/natanmedeiros/dynalias/internal/ui"
)

var (
	// Global flags. The root command disables flag parsing so alias
	// tokens (including -h and ${...}) reach the matcher untouched;
	// these are still registered for the management subcommands and
	// parsed manually for alias invocations.
	aliasFileFlag string
	cacheFileFlag string
)

// rootCmd runs alias invocations. Management verbs live on subcommands.
var rootCmd = &cobra.Command{
	Use:   "dya [alias tokens...]",
	Short: "dya - dynamic command aliases",
	Long: `dya expands user-defined command aliases whose arguments bind to static
data or to data produced on demand by other shell commands.

Aliases are defined in a YAML file (discovered at ./.dya.yaml, ./dya.yaml,
~/.dya.yaml, ~/dya.yaml). Dynamic data is cached encrypted at rest, bound
to the current machine.`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, aliasOverride, cacheOverride, err := splitOverrides(args)
		if err != nil {
			return err
		}

		app, err := newApp(aliasOverride, cacheOverride)
		if err != nil {
			return err
		}

		if len(tokens) == 0 {
			if app.file.Settings.Shell {
				return app.runShell()
			}
			helper.Global(os.Stdout, app.file.Catalog)
			return nil
		}

		if len(tokens) == 1 && match.IsHelpToken(tokens[0]) {
			helper.Global(os.Stdout, app.file.Catalog)
			return nil
		}

		return app.runTokens(tokens)
	},
}

// splitOverrides extracts the --config/--cache path overrides from an
// unparsed argument list, leaving everything else for the matcher.
func splitOverrides(args []string) (tokens []string, aliasPath, cachePath string, err error) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config" || arg == "--cache":
			if i+1 >= len(args) {
				return nil, "", "", fmt.Errorf("%s requires a path argument", arg)
			}
			if arg == "--config" {
				aliasPath = args[i+1]
			} else {
				cachePath = args[i+1]
			}
			i++
		case strings.HasPrefix(arg, "--config="):
			aliasPath = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "--cache="):
			cachePath = strings.TrimPrefix(arg, "--cache=")
		default:
			tokens = append(tokens, arg)
		}
	}
	return tokens, aliasPath, cachePath, nil
}

var errCommandNotFound = errors.New("command not found")

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if errors.Is(err, errCommandNotFound) {
		// Already reported with a hint; keep the exit code.
		return err
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&aliasFileFlag, "config", "", "Path to alias definition file")
	rootCmd.PersistentFlags().StringVar(&cacheFileFlag, "cache", "", "Path to cache file")
	rootCmd.SetErrPrefix(ui.SymbolError)
}
