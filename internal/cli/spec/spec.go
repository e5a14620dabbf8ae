// Package spec loads the declarative command tree the panestore CLI is
// generated from.
package spec

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed commands.yaml commands.schema.json
var embeddedFS embed.FS

// Spec is the decoded commands.yaml.
type Spec struct {
	Version     int       `yaml:"version"`
	App         AppSpec   `yaml:"app"`
	GlobalFlags []Flag    `yaml:"global_flags"`
	Commands    []Command `yaml:"commands"`
}

// AppSpec names the binary and the command run when none is given.
type AppSpec struct {
	Name           string `yaml:"name"`
	Summary        string `yaml:"summary"`
	DefaultCommand string `yaml:"default_command"`
}

// Flag describes a CLI flag.
type Flag struct {
	Name        string   `yaml:"name"`
	Aliases     []string `yaml:"aliases"`
	Type        string   `yaml:"type"`
	Required    bool     `yaml:"required"`
	Default     any      `yaml:"default"`
	Enum        []string `yaml:"enum"`
	Description string   `yaml:"description"`
	Env         string   `yaml:"env"`
	Hidden      bool     `yaml:"hidden"`
}

// Arg describes a positional argument.
type Arg struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Required    bool     `yaml:"required"`
	Variadic    bool     `yaml:"variadic"`
	Enum        []string `yaml:"enum"`
	Description string   `yaml:"description"`
}

// Constraint relates the named args and flags of one command: exactly_one,
// at_least_one, excludes or requires.
type Constraint struct {
	Type   string   `yaml:"type"`
	Fields []string `yaml:"fields"`
}

// JSONSpec marks commands that accept --json.
type JSONSpec struct {
	Supported bool `yaml:"supported"`
}

// Command is one node of the tree. Leaf commands carry the id a handler is
// registered under.
type Command struct {
	Name        string       `yaml:"name"`
	ID          string       `yaml:"id"`
	Summary     string       `yaml:"summary"`
	Description string       `yaml:"description"`
	Aliases     []string     `yaml:"aliases"`
	Flags       []Flag       `yaml:"flags"`
	Args        []Arg        `yaml:"args"`
	Constraints []Constraint `yaml:"constraints"`
	// Store opens the config store before the handler runs.
	Store bool `yaml:"store"`
	// SideEffects persists the store after the handler succeeds.
	SideEffects bool      `yaml:"side_effects"`
	Confirm     bool      `yaml:"confirm"`
	JSON        *JSONSpec `yaml:"json"`
	Hidden      bool      `yaml:"hidden"`
	Subcommands []Command `yaml:"subcommands"`
}

const (
	commandsFile = "commands.yaml"
	schemaFile   = "commands.schema.json"
)

var commandSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	raw, err := embeddedFS.ReadFile(schemaFile)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", schemaFile, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaFile, doc); err != nil {
		return nil, fmt.Errorf("%s: %w", schemaFile, err)
	}
	return c.Compile(schemaFile)
})

// LoadDefault returns the command tree panestore ships with.
func LoadDefault() (*Spec, error) {
	data, err := embeddedFS.ReadFile(commandsFile)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a command tree and rejects it unless it matches the schema
// and every command id is unique. Commands that persist must also open the
// store.
func Parse(data []byte) (*Spec, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var out Spec
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("commands: %w", err)
	}
	if err := out.check(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks a command tree against the embedded JSON schema.
func Validate(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("commands: empty document")
	}
	schema, err := commandSchema()
	if err != nil {
		return fmt.Errorf("commands schema: %w", err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("commands: %w", err)
	}
	doc, err := jsonDocument(raw)
	if err != nil {
		return fmt.Errorf("commands: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("commands: %w", err)
	}
	return nil
}

// jsonDocument turns decoded YAML into the value shapes the schema validator
// understands by going through JSON once.
func jsonDocument(raw any) (any, error) {
	plain, err := stringKeys(raw)
	if err != nil {
		return nil, err
	}
	buf, err := json.Marshal(plain)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(buf))
}

func stringKeys(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			conv, err := stringKeys(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			t[k] = conv
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			name, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			conv, err := stringKeys(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			out[name] = conv
		}
		return out, nil
	case []any:
		for i, item := range t {
			conv, err := stringKeys(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			t[i] = conv
		}
		return t, nil
	default:
		return v, nil
	}
}

func (s *Spec) check() error {
	seen := make(map[string]bool)
	var errs []error
	for _, cmd := range s.AllCommands() {
		if cmd.ID == "" {
			continue
		}
		if seen[cmd.ID] {
			errs = append(errs, fmt.Errorf("command id %q declared twice", cmd.ID))
		}
		seen[cmd.ID] = true
		if cmd.SideEffects && !cmd.Store {
			errs = append(errs, fmt.Errorf("command %q persists without opening the store", cmd.ID))
		}
	}
	return errors.Join(errs...)
}

// AllCommands flattens the tree, parents before their subcommands.
func (s *Spec) AllCommands() []Command {
	if s == nil {
		return nil
	}
	var out []Command
	for _, cmd := range s.Commands {
		appendCommands(&out, cmd)
	}
	return out
}

func appendCommands(out *[]Command, cmd Command) {
	*out = append(*out, cmd)
	for _, sub := range cmd.Subcommands {
		appendCommands(out, sub)
	}
}

// FindByID returns a copy of the command declared with id, or nil.
func (s *Spec) FindByID(id string) *Command {
	id = strings.TrimSpace(id)
	if id == "" || s == nil {
		return nil
	}
	for _, cmd := range s.AllCommands() {
		if cmd.ID == id {
			found := cmd
			return &found
		}
	}
	return nil
}
