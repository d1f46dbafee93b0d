package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/natanmedeiros/dynalias/internal/cache"
	"github.com/natanmedeiros/dynalias/internal/config"
	"github.com/natanmedeiros/dynalias/internal/executor"
	"github.com/natanmedeiros/dynalias/internal/helper"
	"github.com/natanmedeiros/dynalias/internal/match"
	"github.com/natanmedeiros/dynalias/internal/model"
	"github.com/natanmedeiros/dynalias/internal/resolver"
	"github.com/natanmedeiros/dynalias/internal/shell"
	"github.com/natanmedeiros/dynalias/internal/ui"
	"github.com/natanmedeiros/dynalias/internal/validator"
)

// app wires the engine together for one invocation: parsed alias file,
// cache store, resolver, matcher, and executor.
type app struct {
	file     *config.AliasFile
	store    *cache.Store
	resolver *resolver.Resolver
	matcher  *match.Matcher
	executor *executor.Executor
}

// newApp loads configuration, validates it silently, and builds the
// engine. Alias/cache path precedence: flag override, then config.toml,
// then discovery.
func newApp(aliasOverride, cacheOverride string) (*app, error) {
	global, err := config.Load()
	if err != nil {
		return nil, err
	}

	if aliasOverride == "" {
		aliasOverride = global.AliasFile
	}
	aliasPath := config.DiscoverAliasPath(aliasOverride)

	file, err := config.LoadAliasFile(aliasPath, global)
	if err != nil {
		return nil, err
	}

	if report := validator.Validate(file); !report.Passed() {
		report.PrintErrors(os.Stderr)
		return nil, fmt.Errorf("configuration invalid: %s", aliasPath)
	}

	if file.Settings.Verbose {
		fmt.Fprintf(os.Stderr, "loaded configuration from %s\n", aliasPath)
	}

	if cacheOverride == "" {
		cacheOverride = global.CacheFile
	}
	cachePath := config.DiscoverCachePath(cacheOverride)

	store := cache.New(cachePath, file.Settings.Cache)
	if err := store.Load(); err != nil {
		ui.Warnf("cache unavailable, starting empty: %v", err)
	}
	if file.Settings.Verbose {
		fmt.Fprintf(os.Stderr, "cache file: %s (%d history entries)\n", cachePath, len(store.History()))
	}

	res := resolver.New(file.Catalog, store)
	a := &app{
		file:     file,
		store:    store,
		resolver: res,
		matcher:  match.New(file.Catalog.Commands, res.ResolveOne),
		executor: executor.New(res, store),
	}
	return a, nil
}

// runTokens matches and runs one alias invocation.
func (a *app) runTokens(tokens []string) error {
	result, ok := a.matcher.FindCommand(tokens)
	if !ok {
		ui.Errf("command not found: %s", strings.Join(tokens, " "))
		fmt.Fprintln(os.Stderr, ui.Hint("run 'dya -h' to list available commands"))
		return errCommandNotFound
	}

	if result.Help {
		helper.Print(os.Stdout, result.Chain)
	} else {
		a.executor.Execute(result)
		a.store.AddHistory(strings.Join(tokens, " "), a.file.Settings.HistorySize)
	}

	if err := a.store.Save(); err != nil {
		ui.Warnf("failed to save cache: %v", err)
	}
	return nil
}

// runShell starts the interactive prompt backed by the same engine.
func (a *app) runShell() error {
	sh := shell.New(a.matcher.Completions, func(line string) {
		// Matching errors are already reported; the shell keeps going.
		_ = a.runTokens(strings.Fields(line))
	})
	sh.SetHistory(a.store.History())
	return sh.Run()
}

// openStore loads just the cache store for the management subcommands.
func openStore(cacheOverride string) (*cache.Store, error) {
	global, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cacheOverride == "" {
		cacheOverride = global.CacheFile
	}
	store := cache.New(config.DiscoverCachePath(cacheOverride), true)
	if err := store.Load(); err != nil {
		ui.Warnf("cache unavailable, starting empty: %v", err)
	}
	return store, nil
}

// loadCatalog loads the alias file for subcommands that need source
// definitions but not the full engine. Failure degrades to an empty
// catalog so cache management keeps working with a broken config.
func loadCatalog(aliasOverride string) *model.Catalog {
	global, err := config.Load()
	if err != nil {
		return model.NewCatalog()
	}
	if aliasOverride == "" {
		aliasOverride = global.AliasFile
	}
	file, err := config.LoadAliasFile(config.DiscoverAliasPath(aliasOverride), global)
	if err != nil {
		return model.NewCatalog()
	}
	return file.Catalog
}
