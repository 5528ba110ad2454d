// Package wire formats and transmits slave-protocol command lines.
//
// Non-getter commands are written and forgotten. Getter commands perform a
// synchronous correlated exchange: the channel claims exclusive access to the
// stdout broadcaster, writes the command, and reads lines until the matching
// ANS_ answer (or an ANS_ERROR) arrives. Well-known "no value" sentinels in
// the answer payload are normalized to the absence of a value.
package wire
