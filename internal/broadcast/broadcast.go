package broadcast

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/wagiedev/mplayer-sdk-go/internal/errors"
)

// Subscriber is a callback receiving one output line, without its newline.
type Subscriber func(line string)

// subscription pairs a subscriber with its identity key so that registering
// the same function value twice can be detected.
type subscription struct {
	key uintptr
	fn  Subscriber
}

// claim carries lines from the watch loop to the one query exchange that
// currently owns the stream. done is closed on release so a line in hand
// when the window closes can be rerouted to subscribers.
type claim struct {
	lines chan string
	done  chan struct{}
}

// Broadcaster wraps one readable stream and fans lines out to subscribers.
//
// All methods are safe for concurrent use. The gate mutex serializes
// synchronous query exchanges against each other and against DeliverNext
// reads. It is never held while blocked waiting for stream output or while
// subscriber callbacks run, so a query can always claim a silent stream and
// a subscriber can issue its own query from within the callback. The state
// mutex independently guards the stream handle, the subscriber list, and
// the read-ownership bookkeeping below.
type Broadcaster struct {
	log  *slog.Logger
	name string

	gate sync.Mutex // exclusive-access arbitration between queries

	mu        sync.Mutex
	cond      *sync.Cond // signaled when a direct-reading query releases
	reader    *bufio.Reader
	subs      []subscription
	watching  bool
	watchEnd  chan struct{} // closed when the watch loop exits
	pending   *claim        // query claiming the stream while a watcher runs
	inDeliver bool          // the watch loop is parked in a fan-out
	direct    int           // queries reading the stream directly
}

// New creates a broadcaster. The name identifies the stream in logs
// ("stdout" or "stderr").
func New(log *slog.Logger, name string) *Broadcaster {
	b := &Broadcaster{
		log:  log.With("component", "broadcast", "stream", name),
		name: name,
	}
	b.cond = sync.NewCond(&b.mu)

	return b
}

// Attach binds the broadcaster to a readable stream. Any previously attached
// stream reference is replaced.
func (b *Broadcaster) Attach(r io.Reader) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r == nil {
		b.reader = nil

		return
	}

	b.reader = bufio.NewReader(r)
	b.log.Debug("Stream attached")
}

// Detach clears the stream reference. Subsequent reads become no-ops, so
// subscribers stop receiving stale reads after the process goes away.
func (b *Broadcaster) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.reader = nil
	b.log.Debug("Stream detached")
}

// Attached reports whether a stream is currently bound.
func (b *Broadcaster) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.reader != nil
}

// Hook registers a subscriber. A nil subscriber is a validation error.
// Registering the same function value twice is not an error; it reports
// false and leaves exactly one registration in place.
func (b *Broadcaster) Hook(fn Subscriber) (bool, error) {
	if fn == nil {
		return false, &errors.ValidationError{Expected: "callable subscriber"}
	}

	key := reflect.ValueOf(fn).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subs {
		if s.key == key {
			return false, nil
		}
	}

	b.subs = append(b.subs, subscription{key: key, fn: fn})
	b.log.Debug("Subscriber hooked", "count", len(b.subs))

	return true, nil
}

// Unhook removes a subscriber, reporting whether it was registered.
func (b *Broadcaster) Unhook(fn Subscriber) bool {
	if fn == nil {
		return false
	}

	key := reflect.ValueOf(fn).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.key == key {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			b.log.Debug("Subscriber unhooked", "count", len(b.subs))

			return true
		}
	}

	return false
}

// DeliverNext reads at most one line from the stream and delivers it to
// every registered subscriber in registration order. It is the integration
// point for an external I/O readiness mechanism: call it once per readiness
// event.
//
// The return value means "keep watching". It is true with no delivery when
// no stream is attached, when a synchronous query currently holds exclusive
// access, when a Watch loop owns the reads, or when the line is empty. It is
// false once the stream has ended or failed, at which point the readiness
// registration should be dropped.
//
// Fan-out runs after the exclusive gate is released, so a subscriber may
// issue a synchronous query from within its callback.
func (b *Broadcaster) DeliverNext() bool {
	// A query in flight owns the stream; skip without blocking.
	if !b.gate.TryLock() {
		return true
	}

	line, ok, more := b.readNext()
	b.gate.Unlock()

	if ok {
		b.deliver(line)
	}

	return more
}

// readNext reads one line while the caller holds the gate. It reports the
// line, whether it should be delivered, and whether to keep watching.
func (b *Broadcaster) readNext() (string, bool, bool) {
	b.mu.Lock()
	reader := b.reader
	watching := b.watching
	b.mu.Unlock()

	if watching || reader == nil {
		return "", false, true
	}

	line, err := reader.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")

	if err != nil {
		if line == "" {
			if err != io.EOF {
				b.log.Debug("Stream read failed", "error", err)
			}

			return "", false, false
		}
		// The final unterminated line is still delivered.
		return line, true, false
	}

	if line == "" {
		return "", false, true
	}

	return line, true, true
}

func (b *Broadcaster) snapshot() *bufio.Reader {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.reader
}

func (b *Broadcaster) deliver(line string) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(line)
	}
}

// Watch owns the stream's read loop: it reads lines and either fans them out
// to subscribers or hands them to the query exchange currently claiming the
// stream. It is the Go-native replacement for registering the stream
// descriptor with a GUI toolkit's readiness loop. Queries issued while a
// watcher runs never block waiting for unsolicited output, so they complete
// even on a silent stream. A subscriber may issue a synchronous query from
// within its callback; that query reads the stream directly while the loop
// is parked in the fan-out.
//
// Watch returns when the stream ends, is detached, or the context is
// cancelled. Cancellation is observed between reads only: a stream that
// stops producing output keeps the watcher blocked in a read until the
// stream is closed. At most one watch loop runs per broadcaster; a second
// call returns immediately.
func (b *Broadcaster) Watch(ctx context.Context) {
	// Wait out any in-flight exchange before taking over reads.
	b.gate.Lock()
	b.mu.Lock()

	if b.watching {
		b.mu.Unlock()
		b.gate.Unlock()

		return
	}

	b.watching = true
	b.watchEnd = make(chan struct{})
	watchEnd := b.watchEnd
	b.mu.Unlock()
	b.gate.Unlock()

	b.log.Debug("Watch loop started")

	defer func() {
		b.mu.Lock()
		b.watching = false
		b.mu.Unlock()

		// A claimed exchange still waiting on the loop reads directly
		// from here on.
		close(watchEnd)
		b.log.Debug("Watch loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b.mu.Lock()
		for b.direct > 0 {
			b.cond.Wait()
		}
		reader := b.reader
		b.mu.Unlock()

		if reader == nil {
			return
		}

		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if line != "" {
			b.dispatch(line)
		}

		if err != nil {
			if line == "" && err != io.EOF {
				b.log.Debug("Stream read failed", "error", err)
			}

			return
		}
	}
}

// dispatch routes one line read by the watch loop: to the pending query
// exchange if one has claimed the stream, otherwise to subscribers.
func (b *Broadcaster) dispatch(line string) {
	b.mu.Lock()
	pending := b.pending
	b.mu.Unlock()

	if pending != nil {
		select {
		case pending.lines <- line:
		case <-pending.done:
			// The window closed with the line in hand; it is
			// unsolicited after all.
			b.deliver(line)
		}

		return
	}

	b.mu.Lock()
	b.inDeliver = true
	b.mu.Unlock()

	b.deliver(line)

	b.mu.Lock()
	b.inDeliver = false
	b.mu.Unlock()
}

// Exclusive blocks until the stream can be claimed for a synchronous query
// exchange, suppressing broadcast delivery until Release is called.
// Concurrent claims are serialized in arrival order. Claiming never waits
// for stream output, so it succeeds on a silent stream.
func (b *Broadcaster) Exclusive() *Exclusive {
	b.gate.Lock()

	e := &Exclusive{b: b}

	b.mu.Lock()
	if b.watching && !b.inDeliver {
		// The watch loop owns the reads; lines reach this query through
		// a claim handoff instead of a direct read.
		e.cl = &claim{lines: make(chan string), done: make(chan struct{})}
		e.watchEnd = b.watchEnd
		b.pending = e.cl
	} else {
		// Direct reads. When claimed from inside a subscriber callback
		// the watch loop is parked in the fan-out; the counter keeps it
		// parked until release.
		b.direct++
	}
	b.mu.Unlock()

	return e
}

// Exclusive is the token held by one synchronous query exchange. It must be
// released on every exit path; delivery to subscribers stays suppressed while
// it is held.
type Exclusive struct {
	b        *Broadcaster
	cl       *claim
	watchEnd <-chan struct{}
	fellBack bool
	once     sync.Once
}

// ReadLine returns the next line from the claimed stream, without its
// newline. While a watch loop runs, lines arrive through its handoff; if the
// loop exits mid-exchange the token falls back to reading the stream
// directly. It returns ErrDetached if the stream has been detached.
func (e *Exclusive) ReadLine() (string, error) {
	if e.cl != nil && !e.fellBack {
		select {
		case line := <-e.cl.lines:
			return line, nil
		case <-e.watchEnd:
			e.fellBack = true
		}
	}

	reader := e.b.snapshot()
	if reader == nil {
		return "", errors.ErrDetached
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// Release returns the stream to broadcast delivery. Safe to call more than
// once; only the first call unlocks.
func (e *Exclusive) Release() {
	e.once.Do(func() {
		b := e.b

		b.mu.Lock()
		if e.cl != nil {
			if b.pending == e.cl {
				b.pending = nil
			}
		} else {
			b.direct--
			b.cond.Broadcast()
		}
		b.mu.Unlock()

		if e.cl != nil {
			close(e.cl.done)
		}

		b.gate.Unlock()
	})
}
