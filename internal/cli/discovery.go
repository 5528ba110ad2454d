package cli

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/wagiedev/mplayer-sdk-go/internal/errors"
)

// DefaultExecutable is the binary name searched for when no explicit path is
// configured.
const DefaultExecutable = "mplayer"

// Config holds configuration for executable discovery.
type Config struct {
	// Path is an explicit executable path that skips PATH search.
	// If empty, discovery searches PATH and common locations.
	Path string

	// Logger is an optional logger for discovery operations.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates the mplayer executable.
type Discoverer interface {
	// Discover returns the path to the mplayer executable or an
	// ExecNotFoundError listing every location searched.
	Discover() (string, error)
}

type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new executable discoverer with the given
// configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the mplayer executable.
func (d *discoverer) Discover() (string, error) {
	// If an explicit path is provided, use it and only it.
	if d.cfg.Path != "" {
		d.log.Debug("Using explicit executable path", "path", d.cfg.Path)

		if _, err := os.Stat(d.cfg.Path); err == nil {
			return d.cfg.Path, nil
		}

		d.log.Debug("Explicit executable path not found", "path", d.cfg.Path)

		return "", &errors.ExecNotFoundError{SearchedPaths: []string{d.cfg.Path}}
	}

	searchedPaths := make([]string, 0, 4)

	d.log.Debug("Searching for executable in PATH", "name", DefaultExecutable)

	if path, err := exec.LookPath(DefaultExecutable); err == nil {
		d.log.Debug("Found executable in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	commonPaths := []string{
		"/usr/local/bin/" + DefaultExecutable,
		"/usr/bin/" + DefaultExecutable,
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(homeDir, ".local/bin", DefaultExecutable))
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)
		d.log.Debug("Checking common path", "path", path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found executable at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("Executable not found in any searched path", "searched_paths", searchedPaths)

	return "", &errors.ExecNotFoundError{SearchedPaths: searchedPaths}
}
