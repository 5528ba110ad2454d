// Package subprocess owns the mplayer child process and its three standard
// streams. It provides the spawn/terminate lifecycle, liveness checks, and
// mutex-serialized line writes to the process stdin so that concurrently
// issued commands never interleave their bytes.
package subprocess
