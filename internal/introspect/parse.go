package introspect

import (
	"bufio"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/wagiedev/mplayer-sdk-go/internal/schema"
)

// typeMap maps the executable's type tokens to semantic types.
var typeMap = map[string]schema.Type{
	"Flag":        schema.Bool,
	"Float":       schema.Float,
	"Integer":     schema.Int,
	"Position":    schema.Int,
	"Time":        schema.Float,
	"String":      schema.String,
	"String list": schema.StringMap,
}

// readOnlyProps are never settable regardless of declared bounds.
var readOnlyProps = map[string]bool{
	"length":        true,
	"pause":         true,
	"stream_end":    true,
	"stream_length": true,
	"stream_start":  true,
}

// readWriteProps are settable by policy even without declared bounds.
var readWriteProps = map[string]bool{
	"sub_delay": true,
}

// renamedProps remaps property names that collide with reserved facade
// members. The original name stays on the wire.
var renamedProps = map[string]string{
	"pause": "paused",
	"path":  "filepath",
}

// excludedCommands are legacy or duplicate commands superseded by properties.
var excludedCommands = map[string]bool{
	"tv_set_brightness": true,
	"tv_set_contrast":   true,
	"tv_set_saturation": true,
	"tv_set_hue":        true,
	"vo_fullscreen":     true,
	"vo_ontop":          true,
	"vo_rootwin":        true,
	"vo_border":         true,
	"osd":               true,
	"frame_drop":        true,
}

// noBound is the "no bound" sentinel printed by -list-properties.
const noBound = "No"

// isLowerToken reports whether the token contains at least one letter and no
// uppercase letters, which distinguishes property/command names from header
// and separator lines.
func isLowerToken(s string) bool {
	hasLetter := false

	for _, r := range s {
		if unicode.IsUpper(r) {
			return false
		}

		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}

	return hasLetter
}

// parseProperties reads -list-properties output and adds a PropertySpec per
// property line to the schema.
func parseProperties(log *slog.Logger, r io.Reader, s *schema.Schema) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || !isLowerToken(fields[0]) {
			continue
		}

		var name, typeToken, minToken, maxToken string

		switch len(fields) {
		case 4:
			name, typeToken, minToken, maxToken = fields[0], fields[1], fields[2], fields[3]
		case 5:
			// Two-word type token, e.g. "String list".
			name, typeToken, minToken, maxToken = fields[0], fields[1]+" "+fields[2], fields[3], fields[4]
		default:
			continue
		}

		propType, ok := typeMap[typeToken]
		if !ok {
			log.Debug("Skipping property with unknown type", "name", name, "type", typeToken)

			continue
		}

		min := parseBound(minToken)
		max := parseBound(maxToken)
		bounded := min != nil || max != nil

		settable := (bounded || readWriteProps[name]) && !readOnlyProps[name]

		spec := &schema.PropertySpec{
			Name:     name,
			WireName: name,
			Type:     propType,
			Min:      min,
			Max:      max,
			ReadOnly: !settable,
			Settable: settable,
		}

		// Boolean properties are never bounded.
		if propType == schema.Bool {
			spec.Min = nil
			spec.Max = nil
		}

		if renamed, ok := renamedProps[name]; ok {
			spec.Name = renamed
		}

		s.AddProperty(spec)
	}

	return scanner.Err()
}

func parseBound(token string) *float64 {
	if token == noBound {
		return nil
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil
	}

	return &v
}

// parseCommands reads -input cmdlist output and adds a CommandSpec per
// surviving command line to the schema. Property specs must already be in
// place so that name collisions can be skipped.
func parseCommands(log *slog.Logger, r io.Reader, s *schema.Schema) error {
	scanner := bufio.NewScanner(r)

line:
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		name := fields[0]

		// Plain getters are handled through properties; *_property and
		// quit are dispatched specially.
		if strings.HasPrefix(name, "get_") && !strings.HasPrefix(name, "get_meta") {
			continue
		}

		if strings.HasSuffix(name, "_property") || name == "quit" {
			continue
		}

		if s.HasProperty(name) || excludedCommands[name] {
			continue
		}

		// The command list truncates this one name.
		if strings.HasPrefix(name, "osd_show_property_") {
			name = "osd_show_property_text"
		}

		params := make([]schema.Param, 0, len(fields)-1)

		for _, token := range fields[1:] {
			optional := false
			if strings.HasPrefix(token, "[") {
				optional = true
				token = strings.Trim(token, "[]")
			}

			paramType, ok := typeMap[token]
			if !ok {
				log.Debug("Skipping command with unknown parameter type", "name", name, "type", token)

				continue line
			}

			params = append(params, schema.Param{Type: paramType, Optional: optional})
		}

		if err := s.AddCommand(&schema.CommandSpec{Name: name, Params: params}); err != nil {
			log.Warn("Skipping malformed command", "name", name, "error", err)
		}
	}

	return scanner.Err()
}
