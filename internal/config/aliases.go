package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/natanmedeiros/dynalias/internal/model"
	"github.com/natanmedeiros/dynalias/internal/ui"
)

// ErrAliasFileNotFound is returned when the alias definition file is missing.
var ErrAliasFileNotFound = errors.New("alias file not found")

// Dynamic source defaults applied when the document omits the field.
const (
	DefaultDynamicTimeout  = 10  // seconds
	DefaultDynamicPriority = 1   // ResolveAll order, ascending
	DefaultCacheTTL        = 300 // seconds
)

// Settings are the effective runtime preferences: global config.toml
// values overridden by the alias file's `config` document.
type Settings struct {
	HistorySize int
	Verbose     bool
	Shell       bool
	Cache       bool
}

// AliasFile is a parsed alias definition file: the command/source
// catalog plus the effective settings.
type AliasFile struct {
	Path     string
	Catalog  *model.Catalog
	Settings Settings
}

// AliasList accepts either a single alias string or a list of synonym
// patterns.
//
// YAML forms:
//
//	alias: "-o ${file}"
//	alias:
//	  - "-o ${file}"
//	  - "--output ${file}"
type AliasList []string

func (a *AliasList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*a = AliasList{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*a = AliasList(list)
		return nil
	default:
		return fmt.Errorf("invalid alias (expected string or list)")
	}
}

// document is one YAML document in the alias file. A `config` key marks
// a settings document; otherwise `type` selects the block kind. Unknown
// kinds are ignored.
type document struct {
	Config *settingsDoc `yaml:"config"`
	Type   string       `yaml:"type"`
	Name   string       `yaml:"name"`

	// dict
	Data []map[string]any `yaml:"data"`

	// dynamic_dict
	Mapping  map[string]string `yaml:"mapping"`
	Priority *int              `yaml:"priority"`
	CacheTTL *int              `yaml:"cache-ttl"`

	// command (also timeout/command shared with dynamic_dict)
	Alias      AliasList  `yaml:"alias"`
	Command    string     `yaml:"command"`
	Helper     string     `yaml:"helper"`
	HelperType string     `yaml:"helper-type"`
	Timeout    *int       `yaml:"timeout"`
	Strict     bool       `yaml:"strict"`
	SetLocals  bool       `yaml:"set-locals"`
	Sub        []*nodeDoc `yaml:"sub"`
	Args       []*nodeDoc `yaml:"args"`
}

type settingsDoc struct {
	HistorySize *int  `yaml:"history-size"`
	Verbose     *bool `yaml:"verbose"`
	Shell       *bool `yaml:"shell"`
}

type nodeDoc struct {
	Alias     AliasList  `yaml:"alias"`
	Command   string     `yaml:"command"`
	Helper    string     `yaml:"helper"`
	Sub       []*nodeDoc `yaml:"sub"`
	Args      []*nodeDoc `yaml:"args"`
	SetLocals bool       `yaml:"set-locals"`
}

// docSeparator splits the file into YAML documents. Documents that fail
// to parse are skipped with a warning so one bad block doesn't take the
// whole alias file down.
var docSeparator = regexp.MustCompile(`(?m)^---\s*$`)

var envVarRe = regexp.MustCompile(`\$\$\{env\.(\w+)\}`)

// LoadAliasFile parses the alias definition file at path. Settings
// start from the global config (nil means all defaults) and are
// overridden by the file's `config` document.
func LoadAliasFile(path string, global *Config) (*AliasFile, error) {
	if global == nil {
		global = &Config{}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrAliasFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read alias file %s: %w", path, err)
	}

	file := &AliasFile{
		Path:    path,
		Catalog: model.NewCatalog(),
		Settings: Settings{
			HistorySize: global.EffectiveHistorySize(),
			Verbose:     global.Verbose,
			Shell:       global.ShellEnabled(),
			Cache:       global.CacheEnabled(),
		},
	}

	// Tolerate a UTF-8 BOM (common on Windows editors).
	content := strings.TrimPrefix(string(raw), "\ufeff")

	for _, docStr := range docSeparator.Split(content, -1) {
		if strings.TrimSpace(docStr) == "" {
			continue
		}

		var doc document
		if err := yaml.Unmarshal([]byte(docStr), &doc); err != nil {
			ui.Warnf("skipping invalid block in %s: %v", path, err)
			continue
		}

		switch {
		case doc.Config != nil:
			file.applySettings(doc.Config)
		case doc.Type == "dict":
			file.addStatic(&doc)
		case doc.Type == "dynamic_dict":
			file.addDynamic(&doc)
		case doc.Type == "command":
			file.addCommand(&doc)
		}
		// Unknown types are silently ignored.
	}

	return file, nil
}

func (f *AliasFile) applySettings(doc *settingsDoc) {
	if doc.HistorySize != nil {
		f.Settings.HistorySize = ClampHistorySize(*doc.HistorySize)
	}
	if doc.Verbose != nil {
		f.Settings.Verbose = *doc.Verbose
	}
	if doc.Shell != nil {
		f.Settings.Shell = *doc.Shell
	}
}

func (f *AliasFile) addStatic(doc *document) {
	rows := make([]model.Row, 0, len(doc.Data))
	for _, item := range doc.Data {
		row := make(model.Row, len(item))
		for k, v := range item {
			if s, ok := v.(string); ok {
				row[k] = substituteEnv(s)
			} else {
				row[k] = v
			}
		}
		rows = append(rows, row)
	}
	f.Catalog.Statics[doc.Name] = &model.StaticSource{Name: doc.Name, Rows: rows}
}

func (f *AliasFile) addDynamic(doc *document) {
	src := &model.DynamicSource{
		Name:     doc.Name,
		Command:  doc.Command,
		Mapping:  doc.Mapping,
		Priority: DefaultDynamicPriority,
		Timeout:  DefaultDynamicTimeout,
		CacheTTL: DefaultCacheTTL,
	}
	if doc.Priority != nil {
		src.Priority = *doc.Priority
	}
	if doc.Timeout != nil {
		src.Timeout = *doc.Timeout
	}
	if doc.CacheTTL != nil {
		src.CacheTTL = *doc.CacheTTL
	}
	f.Catalog.Dynamics[doc.Name] = src
}

func (f *AliasFile) addCommand(doc *document) {
	node := &model.Node{
		Kind:       model.KindCommand,
		Name:       doc.Name,
		Aliases:    []string(doc.Alias),
		Command:    doc.Command,
		Helper:     doc.Helper,
		HelperType: doc.HelperType,
		Strict:     doc.Strict,
		SetLocals:  doc.SetLocals,
	}
	if doc.Timeout != nil {
		node.Timeout = *doc.Timeout
	}
	for _, sub := range doc.Sub {
		node.Sub = append(node.Sub, sub.toNode(model.KindSub))
	}
	for _, arg := range doc.Args {
		node.Args = append(node.Args, arg.toNode(model.KindArg))
	}
	f.Catalog.Commands = append(f.Catalog.Commands, node)
}

func (d *nodeDoc) toNode(kind model.NodeKind) *model.Node {
	node := &model.Node{
		Kind:      kind,
		Aliases:   []string(d.Alias),
		Command:   d.Command,
		Helper:    d.Helper,
		SetLocals: d.SetLocals,
	}
	for _, sub := range d.Sub {
		node.Sub = append(node.Sub, sub.toNode(model.KindSub))
	}
	for _, arg := range d.Args {
		node.Args = append(node.Args, arg.toNode(model.KindArg))
	}
	return node
}

// substituteEnv replaces $${env.NAME} references with the environment
// variable's value; unset variables become empty strings.
func substituteEnv(text string) string {
	return envVarRe.ReplaceAllStringFunc(text, func(m string) string {
		name := envVarRe.FindStringSubmatch(m)[1]
		return os.Getenv(name)
	})
}
