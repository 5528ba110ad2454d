package introspect

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/wagiedev/mplayer-sdk-go/internal/schema"
)

// registry caches one schema per executable path. Capability tables are
// built once and shared read-only across all player instances using the
// same executable.
var (
	regMu    sync.Mutex
	registry = make(map[string]*schema.Schema, 2)
	regGroup singleflight.Group
)

// Load returns the cached schema for the executable at path, running
// introspection on first use. Concurrent first uses for the same path are
// deduplicated; only one probe runs.
func Load(ctx context.Context, log *slog.Logger, path string) (*schema.Schema, error) {
	regMu.Lock()
	if s, ok := registry[path]; ok {
		regMu.Unlock()

		return s, nil
	}
	regMu.Unlock()

	v, err, _ := regGroup.Do(path, func() (any, error) {
		s, err := Run(ctx, log, path)
		if err != nil {
			return nil, err
		}

		regMu.Lock()
		registry[path] = s
		regMu.Unlock()

		return s, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*schema.Schema), nil
}

// Store places a schema in the cache, replacing any previous entry for the
// path. Used when a caller injects a pre-built schema.
func Store(path string, s *schema.Schema) {
	regMu.Lock()
	defer regMu.Unlock()

	registry[path] = s
}

// Reset clears the cache. Intended for tests.
func Reset() {
	regMu.Lock()
	defer regMu.Unlock()

	registry = make(map[string]*schema.Schema, 2)
}
