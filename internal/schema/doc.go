// Package schema defines the typed capability tables discovered from the
// mplayer executable: property specifications with semantic types and bounds,
// and command specifications with positional parameter lists.
//
// A Schema is built once per executable (see the introspect package) and is
// read-only afterwards, so it can be shared freely across player instances.
// Schemas can also be serialized to JSON and loaded back, which lets tests
// and embedders inject a fixed capability set without a real executable.
package schema
