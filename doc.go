// Package mplayersdk provides a Go SDK for driving an MPlayer process
// through its line-oriented slave protocol.
//
// The SDK spawns mplayer in slave, idle, and quiet modes and exposes its
// runtime-discovered properties and commands as a typed, validated call
// surface. Capability discovery runs once per executable and is shared
// across player instances.
//
// # Basic Usage
//
//	player, err := mplayersdk.New(
//	    mplayersdk.WithArgs("-ao", "alsa"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer player.Close()
//
//	ctx := context.Background()
//	if err := player.Spawn(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, _, err := player.Call(ctx, "loadfile", "track.mp3"); err != nil {
//	    log.Fatal(err)
//	}
//
//	volume, err := player.Get(ctx, "volume")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if volume != nil {
//	    fmt.Printf("volume: %v\n", volume)
//	}
//
// # Properties
//
// Get returns a value typed according to the discovered property spec:
// bool, int, float64, string, or map[string]string. A nil result means the
// player reported no value. Set accepts either an absolute value, which is
// type- and bounds-checked before transmission, or a Step for a relative
// adjustment, which bypasses bounds checking:
//
//	err = player.Set(ctx, "volume", 50.0)
//	err = player.Set(ctx, "volume", mplayersdk.Step{Value: 5, Direction: -1})
//
// # Unsolicited Output
//
// Lines the player prints outside of query answers are fanned out through
// the stdout and stderr broadcasters:
//
//	ok, err := player.Stdout().Hook(func(line string) {
//	    fmt.Println("mplayer:", line)
//	})
//	go player.Stdout().Watch(ctx)
//
// While a synchronous getter exchange is in flight, lines consumed on stdout
// belong to the query and are not delivered to subscribers.
//
// # Logging
//
// For detailed operation tracking, use WithLogger:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	player, err := mplayersdk.New(mplayersdk.WithLogger(logger))
//
// Without a logger, the SDK is silent.
package mplayersdk
