// Package introspect discovers the capability surface of an mplayer
// executable by invoking it in its two self-describing modes
// (-list-properties and -input cmdlist) and parsing the output into typed
// property and command tables.
//
// Discovery runs once per executable path; the resulting schema is cached
// process-wide and shared read-only across player instances.
package introspect
