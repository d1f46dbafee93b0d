package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/natanmedeiros/dynalias/internal/config"
	"github.com/natanmedeiros/dynalias/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the alias definition file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		global, err := config.Load()
		if err != nil {
			return err
		}
		override := aliasFileFlag
		if override == "" {
			override = global.AliasFile
		}
		path := config.DiscoverAliasPath(override)

		file, err := config.LoadAliasFile(path, global)
		if err != nil {
			return err
		}

		report := validator.Validate(file)
		report.Print(os.Stdout)
		if !report.Passed() {
			return fmt.Errorf("configuration has %d error(s)", report.FailedCount())
		}
		return nil
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive shell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(aliasFileFlag, cacheFileFlag)
		if err != nil {
			return err
		}
		return app.runShell()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd, shellCmd)
}
