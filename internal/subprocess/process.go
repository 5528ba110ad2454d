package subprocess

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/wagiedev/mplayer-sdk-go/internal/errors"
)

// terminateGrace is how long Terminate waits for the process to exit after
// sending the quit command before falling back to a kill. Teardown must
// never hang the calling thread on an unresponsive child.
const terminateGrace = 3 * time.Second

// Process supervises one mplayer child process.
//
// The zero state is "not spawned". Spawn starts the process and wires up its
// stdin/stdout/stderr pipes; Terminate sends the quit command and waits for
// exit. Both are idempotent with respect to the current liveness state.
type Process struct {
	log   *slog.Logger
	path  string
	args  []string
	grace time.Duration

	mu       sync.Mutex // guards lifecycle state and serializes stdin writes
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   io.ReadCloser
	stderr   io.ReadCloser
	waitCh   chan struct{}
	exitCode int
}

// NewProcess creates a supervisor for the executable at path with the given
// full argument list. The process is not started until Spawn is called.
func NewProcess(log *slog.Logger, path string, args []string) *Process {
	return &Process{
		log:   log.With("component", "subprocess"),
		path:  path,
		args:  args,
		grace: terminateGrace,
	}
}

// Spawn starts the child process. It is a no-op if the process is already
// alive. The context is only consulted before starting; the running process
// outlives it and is stopped through Terminate or Kill.
func (p *Process) Spawn(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.aliveLocked() {
		p.log.Debug("Spawn requested but process already alive", "pid", p.cmd.Process.Pid)

		return nil
	}

	//nolint:gosec // G204: launching a caller-configured executable is the point
	cmd := exec.Command(p.path, p.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &errors.SpawnError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &errors.SpawnError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &errors.SpawnError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		p.log.Error("Failed to start process", "path", p.path, "error", err)

		return &errors.SpawnError{Err: fmt.Errorf("start process: %w", err)}
	}

	p.cmd = cmd
	p.stdin = stdin
	p.stdout = stdout
	p.stderr = stderr
	p.waitCh = make(chan struct{})

	waitCh := p.waitCh

	go func() {
		err := cmd.Wait()

		p.mu.Lock()
		p.exitCode = cmd.ProcessState.ExitCode()
		p.mu.Unlock()

		if err != nil {
			p.log.Debug("Process exited", "error", err)
		} else {
			p.log.Debug("Process exited cleanly")
		}

		close(waitCh)
	}()

	p.log.Info("Process started", "path", p.path, "pid", cmd.Process.Pid)

	return nil
}

// Alive reports whether the process has been spawned and has not exited.
func (p *Process) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.aliveLocked()
}

func (p *Process) aliveLocked() bool {
	if p.cmd == nil || p.waitCh == nil {
		return false
	}

	select {
	case <-p.waitCh:
		return false
	default:
		return true
	}
}

// WriteLine writes one command line to the process stdin, appending the
// newline terminator. The write is atomic at line granularity: concurrent
// callers are serialized. Returns ErrNotRunning if the process is not alive.
func (p *Process) WriteLine(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.aliveLocked() || p.stdin == nil {
		return errors.ErrNotRunning
	}

	if _, err := io.WriteString(p.stdin, line+"\n"); err != nil {
		return fmt.Errorf("write to stdin: %w", err)
	}

	return nil
}

// Terminate sends the quit command (never prefixed) and waits for the
// process to exit, returning its exit status. If the process ignores the
// command, it is killed after a grace period. Calling Terminate on a dead
// or never-spawned process is a no-op reporting ok=false.
func (p *Process) Terminate(code int) (int, bool) {
	p.mu.Lock()

	if !p.aliveLocked() {
		p.mu.Unlock()

		return 0, false
	}

	waitCh := p.waitCh
	pid := p.cmd.Process.Pid

	p.log.Debug("Sending quit command", "pid", pid, "code", code)

	// Write errors are expected if the process raced to exit; the wait
	// below resolves either way. Closing stdin signals end of input to
	// children that ignore quit.
	_, _ = fmt.Fprintf(p.stdin, "quit %d\n", code)
	_ = p.stdin.Close()

	p.mu.Unlock()

	select {
	case <-waitCh:
	case <-time.After(p.grace):
		p.log.Warn("Process did not exit after quit, killing", "pid", pid)
		p.Kill()
		<-waitCh
	}

	p.mu.Lock()
	exitCode := p.exitCode
	p.mu.Unlock()

	p.log.Info("Process terminated", "pid", pid, "exit_code", exitCode)

	return exitCode, true
}

// Kill forcefully stops the process. Safe to call on an already-terminated
// or never-spawned process.
func (p *Process) Kill() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil && p.cmd.Process != nil && p.aliveLocked() {
		p.log.Debug("Killing process", "pid", p.cmd.Process.Pid)

		_ = p.cmd.Process.Kill()
	}
}

// Stdout returns the read end of the process stdout, or nil before Spawn.
func (p *Process) Stdout() io.Reader {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdout == nil {
		return nil
	}

	return p.stdout
}

// Stderr returns the read end of the process stderr, or nil before Spawn.
func (p *Process) Stderr() io.Reader {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stderr == nil {
		return nil
	}

	return p.stderr
}

// PID returns the process ID, or 0 if the process has never been spawned.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}

	return p.cmd.Process.Pid
}
