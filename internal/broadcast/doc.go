// Package broadcast fans unsolicited output lines out to subscribers.
//
// A Broadcaster wraps one readable process stream (stdout or stderr) and
// delivers each newline-terminated line to every registered subscriber in
// registration order. The same stream may also be claimed temporarily by a
// synchronous query exchange through Exclusive; while that exclusive window
// is open, broadcast delivery is suppressed and any line consumed by the
// query reader is never seen by subscribers.
package broadcast
