package schema

import (
	"sort"

	"github.com/wagiedev/mplayer-sdk-go/internal/errors"
)

// Type is the semantic type of a property or command parameter.
type Type int

// Semantic types understood by the slave protocol.
const (
	Bool Type = iota
	Int
	Float
	String
	StringMap
)

// String returns the human-readable type name used in error messages and in
// the JSON schema document.
func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case StringMap:
		return "string map"
	default:
		return "unknown"
	}
}

// Matches reports whether the runtime type of v is exactly t.
// Validation is strict: an int is not accepted where a float is declared.
func (t Type) Matches(v any) bool {
	switch t {
	case Bool:
		_, ok := v.(bool)
		return ok
	case Int:
		_, ok := v.(int)
		return ok
	case Float:
		_, ok := v.(float64)
		return ok
	case String:
		_, ok := v.(string)
		return ok
	case StringMap:
		_, ok := v.(map[string]string)
		return ok
	default:
		return false
	}
}

// PropertySpec describes one controllable property.
//
// Name is the facade-visible name; WireName is the name used on the wire.
// The two differ only for the few properties renamed to avoid collisions
// with reserved facade members (e.g. "pause" is exposed as "paused" but
// queried as "pause").
type PropertySpec struct {
	Name     string
	WireName string
	Type     Type
	Min      *float64 // nil = unbounded
	Max      *float64 // nil = unbounded
	ReadOnly bool
	Settable bool
}

// Param describes one positional command parameter.
type Param struct {
	Type     Type
	Optional bool
}

// CommandSpec describes one command and its ordered parameter list.
// Optional parameters are always trailing.
type CommandSpec struct {
	Name   string
	Params []Param
}

// Required returns the number of non-optional parameters.
func (c *CommandSpec) Required() int {
	n := 0

	for _, p := range c.Params {
		if !p.Optional {
			n++
		}
	}

	return n
}

// Schema is the full capability surface discovered from one executable.
type Schema struct {
	// Version identifies the executable the schema was discovered from,
	// e.g. its path or a version string. Informational only.
	Version string

	properties map[string]*PropertySpec
	commands   map[string]*CommandSpec
}

// New creates an empty schema for the given version identifier.
func New(version string) *Schema {
	return &Schema{
		Version:    version,
		properties: make(map[string]*PropertySpec, 64),
		commands:   make(map[string]*CommandSpec, 64),
	}
}

// AddProperty registers a property spec under its facade name.
func (s *Schema) AddProperty(p *PropertySpec) {
	if p.WireName == "" {
		p.WireName = p.Name
	}

	s.properties[p.Name] = p
}

// AddCommand registers a command spec. It returns a SchemaError if an
// optional parameter is followed by a required one.
func (s *Schema) AddCommand(c *CommandSpec) error {
	optional := false

	for _, p := range c.Params {
		if optional && !p.Optional {
			return &errors.SchemaError{
				Detail: "command " + c.Name + ": required parameter after optional",
			}
		}

		optional = optional || p.Optional
	}

	s.commands[c.Name] = c

	return nil
}

// Property looks up a property spec by facade name.
func (s *Schema) Property(name string) (*PropertySpec, bool) {
	p, ok := s.properties[name]

	return p, ok
}

// Command looks up a command spec by name.
func (s *Schema) Command(name string) (*CommandSpec, bool) {
	c, ok := s.commands[name]

	return c, ok
}

// HasProperty reports whether name is a known property.
func (s *Schema) HasProperty(name string) bool {
	_, ok := s.properties[name]

	return ok
}

// PropertyNames returns all property names in sorted order.
func (s *Schema) PropertyNames() []string {
	names := make([]string, 0, len(s.properties))
	for name := range s.properties {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// CommandNames returns all command names in sorted order.
func (s *Schema) CommandNames() []string {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
