package wire

import (
	"fmt"
	"strconv"
)

// Prefix is a modifier token prepended to a command line, controlling how the
// command interacts with the pause state.
type Prefix string

// Command prefixes understood by the slave protocol. PrefixNone suppresses
// the prefix entirely.
const (
	PrefixNone       Prefix = ""
	Pausing          Prefix = "pausing"
	PausingToggle    Prefix = "pausing_toggle"
	PausingKeep      Prefix = "pausing_keep"
	PausingKeepForce Prefix = "pausing_keep_force"
)

// unprefixed are the commands that must never carry a prefix.
var unprefixed = map[string]bool{
	"quit":  true,
	"pause": true,
	"stop":  true,
}

// FormatArg renders one argument for the wire: booleans as 1/0, numbers in
// their shortest form, everything else as plain text.
func FormatArg(v any) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "1"
		}

		return "0"
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// formatLine builds a complete command line. The prefix is omitted for the
// commands that must never be prefixed.
func formatLine(prefix Prefix, name string, args []any) string {
	line := string(prefix)
	if line != "" && !unprefixed[name] {
		line += " " + name
	} else {
		line = name
	}

	for _, a := range args {
		line += " " + FormatArg(a)
	}

	return line
}
