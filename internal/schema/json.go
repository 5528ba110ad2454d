package schema

import (
	"encoding/json"
	"io"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/wagiedev/mplayer-sdk-go/internal/errors"
)

// typeNames maps semantic types to their JSON document tokens.
var typeNames = map[Type]string{
	Bool:      "bool",
	Int:       "int",
	Float:     "float",
	String:    "string",
	StringMap: "string_map",
}

// typeTokens is the inverse of typeNames.
var typeTokens = map[string]Type{
	"bool":       Bool,
	"int":        Int,
	"float":      Float,
	"string":     String,
	"string_map": StringMap,
}

// document is the JSON representation of a Schema.
type document struct {
	Version    string        `json:"version"`
	Properties []propertyDoc `json:"properties"`
	Commands   []commandDoc  `json:"commands"`
}

type propertyDoc struct {
	Name     string   `json:"name"`
	WireName string   `json:"wire_name,omitempty"`
	Type     string   `json:"type"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	ReadOnly bool     `json:"read_only,omitempty"`
	Settable bool     `json:"settable,omitempty"`
}

type commandDoc struct {
	Name   string     `json:"name"`
	Params []paramDoc `json:"params,omitempty"`
}

type paramDoc struct {
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

// documentSchema is the JSON Schema every capability document must satisfy
// before it is decoded into typed specs.
var documentSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"version", "properties", "commands"},
	Properties: map[string]*jsonschema.Schema{
		"version": {Type: "string"},
		"properties": {
			Type: "array",
			Items: &jsonschema.Schema{
				Type:     "object",
				Required: []string{"name", "type"},
				Properties: map[string]*jsonschema.Schema{
					"name":      {Type: "string"},
					"wire_name": {Type: "string"},
					"type":      typeTokenSchema(),
					"min":       {Type: "number"},
					"max":       {Type: "number"},
					"read_only": {Type: "boolean"},
					"settable":  {Type: "boolean"},
				},
			},
		},
		"commands": {
			Type: "array",
			Items: &jsonschema.Schema{
				Type:     "object",
				Required: []string{"name"},
				Properties: map[string]*jsonschema.Schema{
					"name": {Type: "string"},
					"params": {
						Type: "array",
						Items: &jsonschema.Schema{
							Type:     "object",
							Required: []string{"type"},
							Properties: map[string]*jsonschema.Schema{
								"type":     typeTokenSchema(),
								"optional": {Type: "boolean"},
							},
						},
					},
				},
			},
		},
	},
}

func typeTokenSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "string",
		Enum: []any{"bool", "int", "float", "string", "string_map"},
	}
}

// MarshalJSON serializes the schema as a capability document with
// deterministic ordering.
func (s *Schema) MarshalJSON() ([]byte, error) {
	doc := document{
		Version:    s.Version,
		Properties: make([]propertyDoc, 0, len(s.properties)),
		Commands:   make([]commandDoc, 0, len(s.commands)),
	}

	for _, name := range s.PropertyNames() {
		p := s.properties[name]

		pd := propertyDoc{
			Name:     p.Name,
			Type:     typeNames[p.Type],
			Min:      p.Min,
			Max:      p.Max,
			ReadOnly: p.ReadOnly,
			Settable: p.Settable,
		}
		if p.WireName != p.Name {
			pd.WireName = p.WireName
		}

		doc.Properties = append(doc.Properties, pd)
	}

	for _, name := range s.CommandNames() {
		c := s.commands[name]

		cd := commandDoc{Name: c.Name, Params: make([]paramDoc, 0, len(c.Params))}
		for _, param := range c.Params {
			cd.Params = append(cd.Params, paramDoc{
				Type:     typeNames[param.Type],
				Optional: param.Optional,
			})
		}

		doc.Commands = append(doc.Commands, cd)
	}

	return json.Marshal(doc)
}

// Load reads a capability document, validates it against the document schema,
// and builds a Schema from it.
func Load(r io.Reader) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &errors.SchemaError{Detail: "read document", Err: err}
	}

	// Validate the raw document before decoding into typed structs.
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, &errors.SchemaError{Detail: "decode document", Err: err}
	}

	resolved, err := documentSchema.Resolve(nil)
	if err != nil {
		return nil, &errors.SchemaError{Detail: "resolve document schema", Err: err}
	}

	if err := resolved.Validate(instance); err != nil {
		return nil, &errors.SchemaError{Detail: "validate document", Err: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &errors.SchemaError{Detail: "decode document", Err: err}
	}

	s := New(doc.Version)

	for _, pd := range doc.Properties {
		s.AddProperty(&PropertySpec{
			Name:     pd.Name,
			WireName: pd.WireName,
			Type:     typeTokens[pd.Type],
			Min:      pd.Min,
			Max:      pd.Max,
			ReadOnly: pd.ReadOnly,
			Settable: pd.Settable,
		})
	}

	for _, cd := range doc.Commands {
		spec := &CommandSpec{Name: cd.Name, Params: make([]Param, 0, len(cd.Params))}
		for _, pd := range cd.Params {
			spec.Params = append(spec.Params, Param{
				Type:     typeTokens[pd.Type],
				Optional: pd.Optional,
			})
		}

		if err := s.AddCommand(spec); err != nil {
			return nil, err
		}
	}

	return s, nil
}
