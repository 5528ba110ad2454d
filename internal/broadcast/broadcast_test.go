package broadcast

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkerrors "github.com/wagiedev/mplayer-sdk-go/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHook_NilSubscriberIsError(t *testing.T) {
	b := New(testLogger(), "stdout")

	ok, err := b.Hook(nil)
	require.False(t, ok)

	var valErr *sdkerrors.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestHook_DuplicateIsIdempotent(t *testing.T) {
	b := New(testLogger(), "stdout")

	var got []string

	cb := func(line string) { got = append(got, line) }

	ok, err := b.Hook(cb)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.Hook(cb)
	require.NoError(t, err)
	require.False(t, ok, "duplicate registration reports failure")

	b.Attach(strings.NewReader("hello\n"))
	require.True(t, b.DeliverNext())
	require.Equal(t, []string{"hello"}, got, "exactly one registration delivers")
}

func TestUnhook_NotRegistered(t *testing.T) {
	b := New(testLogger(), "stdout")

	require.False(t, b.Unhook(func(string) {}))
	require.False(t, b.Unhook(nil))
}

func TestUnhook_RemovesSubscriber(t *testing.T) {
	b := New(testLogger(), "stdout")

	calls := 0
	cb := func(string) { calls++ }

	_, err := b.Hook(cb)
	require.NoError(t, err)
	require.True(t, b.Unhook(cb))

	b.Attach(strings.NewReader("line\n"))
	b.DeliverNext()
	require.Zero(t, calls)
}

func TestDeliverNext_RegistrationOrder(t *testing.T) {
	b := New(testLogger(), "stderr")

	var order []string

	first := func(line string) { order = append(order, "first:"+line) }
	second := func(line string) { order = append(order, "second:"+line) }

	_, err := b.Hook(first)
	require.NoError(t, err)
	_, err = b.Hook(second)
	require.NoError(t, err)

	b.Attach(strings.NewReader("A: playing\n"))
	require.True(t, b.DeliverNext())

	require.Equal(t, []string{"first:A: playing", "second:A: playing"}, order)
}

func TestDeliverNext_DetachedKeepsWatching(t *testing.T) {
	b := New(testLogger(), "stdout")

	require.True(t, b.DeliverNext(), "no stream attached is a keep-watching no-op")

	b.Attach(strings.NewReader("data\n"))
	b.Detach()
	require.True(t, b.DeliverNext())
}

func TestDeliverNext_EmptyLineNoDelivery(t *testing.T) {
	b := New(testLogger(), "stdout")

	calls := 0

	_, err := b.Hook(func(string) { calls++ })
	require.NoError(t, err)

	b.Attach(strings.NewReader("\nreal line\n"))

	require.True(t, b.DeliverNext(), "blank line keeps watching")
	require.Zero(t, calls)

	require.True(t, b.DeliverNext())
	require.Equal(t, 1, calls)
}

func TestDeliverNext_StopsAtEOF(t *testing.T) {
	b := New(testLogger(), "stdout")
	b.Attach(strings.NewReader("only\n"))

	require.True(t, b.DeliverNext())
	require.False(t, b.DeliverNext(), "EOF stops watching")
}

func TestDeliverNext_SuppressedWhileExclusiveHeld(t *testing.T) {
	b := New(testLogger(), "stdout")

	var got []string

	_, err := b.Hook(func(line string) { got = append(got, line) })
	require.NoError(t, err)

	b.Attach(strings.NewReader("ANS_volume=50\nunsolicited\n"))

	excl := b.Exclusive()

	// Broadcast reads are no-ops during the exclusive window.
	require.True(t, b.DeliverNext())
	require.Empty(t, got)

	// The query consumes its answer; subscribers never see it.
	line, err := excl.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "ANS_volume=50", line)

	excl.Release()

	// Normal delivery resumes from the next line onward.
	require.True(t, b.DeliverNext())
	require.Equal(t, []string{"unsolicited"}, got)
}

func TestExclusive_ReadLineAfterDetach(t *testing.T) {
	b := New(testLogger(), "stdout")
	b.Attach(strings.NewReader("line\n"))

	excl := b.Exclusive()
	defer excl.Release()

	b.Detach()

	_, err := excl.ReadLine()
	require.ErrorIs(t, err, sdkerrors.ErrDetached)
}

func TestExclusive_SerializesConcurrentClaims(t *testing.T) {
	b := New(testLogger(), "stdout")

	const n = 8

	var (
		mu      sync.Mutex
		holders int
		maxHeld int
		wg      sync.WaitGroup
	)

	for range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			excl := b.Exclusive()

			mu.Lock()
			holders++
			if holders > maxHeld {
				maxHeld = holders
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()

			excl.Release()
		}()
	}

	wg.Wait()
	require.Equal(t, 1, maxHeld, "exclusive windows never overlap")
}

func TestExclusive_ReleaseTwiceIsSafe(t *testing.T) {
	b := New(testLogger(), "stdout")

	excl := b.Exclusive()
	excl.Release()
	excl.Release()

	// Gate is free again.
	require.True(t, b.DeliverNext())
}

func TestDeliverNext_SubscriberCanQuery(t *testing.T) {
	b := New(testLogger(), "stdout")
	b.Attach(strings.NewReader("A: position changed\nANS_volume=50\n"))

	var answer string
	var answerErr error

	_, err := b.Hook(func(string) {
		excl := b.Exclusive()
		defer excl.Release()

		answer, answerErr = excl.ReadLine()
	})
	require.NoError(t, err)

	done := make(chan struct{})

	go func() {
		defer close(done)

		b.DeliverNext()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber query deadlocked against the fan-out")
	}

	require.NoError(t, answerErr)
	require.Equal(t, "ANS_volume=50", answer)
}

func TestWatch_QueryCompletesOnSilentStream(t *testing.T) {
	b := New(testLogger(), "stdout")

	pr, pw := io.Pipe()
	b.Attach(pr)
	t.Cleanup(func() { _ = pw.Close() })

	delivered := make(chan string, 1)

	_, err := b.Hook(func(line string) {
		select {
		case delivered <- line:
		default:
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go b.Watch(ctx)

	// Prove the loop is running before the query claims the stream.
	go func() { _, _ = io.WriteString(pw, "Playing track.mp3.\n") }()

	select {
	case <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not start")
	}

	type result struct {
		line string
		err  error
	}

	got := make(chan result, 1)

	go func() {
		excl := b.Exclusive()
		defer excl.Release()

		// Nothing arrives until the answer; the claim must not depend
		// on unsolicited output showing up first.
		go func() { _, _ = io.WriteString(pw, "ANS_volume=50\n") }()

		line, rerr := excl.ReadLine()
		got <- result{line, rerr}
	}()

	select {
	case r := <-got:
		require.NoError(t, r.err)
		require.Equal(t, "ANS_volume=50", r.line)
	case <-time.After(5 * time.Second):
		t.Fatal("query never completed while the watch loop was running")
	}

	select {
	case line := <-delivered:
		t.Fatalf("query answer was broadcast to subscribers: %q", line)
	default:
	}
}

func TestWatch_SubscriberCanQueryDuringFanOut(t *testing.T) {
	b := New(testLogger(), "stdout")

	pr, pw := io.Pipe()
	b.Attach(pr)
	t.Cleanup(func() { _ = pw.Close() })

	type result struct {
		line string
		err  error
	}

	got := make(chan result, 1)

	_, err := b.Hook(func(line string) {
		if line != "A: position changed" {
			return
		}

		excl := b.Exclusive()
		defer excl.Release()

		go func() { _, _ = io.WriteString(pw, "ANS_volume=50\n") }()

		l, rerr := excl.ReadLine()
		got <- result{l, rerr}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go b.Watch(ctx)

	go func() { _, _ = io.WriteString(pw, "A: position changed\n") }()

	select {
	case r := <-got:
		require.NoError(t, r.err)
		require.Equal(t, "ANS_volume=50", r.line)
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber query deadlocked during watch fan-out")
	}
}
