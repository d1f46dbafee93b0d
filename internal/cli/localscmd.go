package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/natanmedeiros/dynalias/internal/ui"
)

var localsCmd = &cobra.Command{
	Use:   "locals",
	Short: "Manage persistent local variables ($${locals.key})",
}

var localsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a local variable",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cacheFileFlag)
		if err != nil {
			return err
		}
		store.SetLocal(args[0], args[1])
		fmt.Println(ui.Successf("local variable set: %s=%s", args[0], args[1]))
		return nil
	},
}

var localsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cacheFileFlag)
		if err != nil {
			return err
		}
		locals := store.Locals()
		if len(locals) == 0 {
			fmt.Println(ui.Hint("no local variables set"))
			return nil
		}
		keys := make([]string, 0, len(locals))
		for k := range locals {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", ui.Accent.Render(k), locals[k])
		}
		return nil
	},
}

var localsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all local variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cacheFileFlag)
		if err != nil {
			return err
		}
		if store.ClearLocals() {
			fmt.Println(ui.Success("local variables cleared"))
		} else {
			fmt.Println(ui.Hint("no local variables to clear"))
		}
		return nil
	},
}

func init() {
	localsCmd.AddCommand(localsSetCmd, localsListCmd, localsClearCmd)
	rootCmd.AddCommand(localsCmd)
}
