package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/natanmedeiros/dynalias/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the encrypted result cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached dynamic source results (keeps history and locals)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cacheFileFlag)
		if err != nil {
			return err
		}
		count := store.ClearSources()
		fmt.Println(ui.Successf("cleared %d cache entries (history preserved)", count))
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cacheFileFlag)
		if err != nil {
			return err
		}

		ttls := make(map[string]int)
		for name, src := range loadCatalog(aliasFileFlag).Dynamics {
			ttls[name] = src.CacheTTL
		}

		count := store.PurgeExpired(ttls)
		fmt.Println(ui.Successf("purged %d expired entries", count))
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the entire cache file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cacheFileFlag)
		if err != nil {
			return err
		}
		if store.DeleteAll() {
			fmt.Println(ui.Successf("cache file deleted: %s", store.Path()))
		} else {
			fmt.Println(ui.Hint("cache file not found: " + store.Path()))
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage command history",
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear command history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cacheFileFlag)
		if err != nil {
			return err
		}
		if store.ClearHistory() {
			fmt.Println(ui.Success("command history cleared"))
		} else {
			fmt.Println(ui.Hint("no history to clear"))
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd, cachePurgeCmd, cacheDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(cacheCmd, historyCmd)
}
