package introspect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"golang.org/x/sync/errgroup"

	sdkerrors "github.com/wagiedev/mplayer-sdk-go/internal/errors"
	"github.com/wagiedev/mplayer-sdk-go/internal/schema"
)

// Run invokes the executable in its two self-describing modes and builds the
// capability schema. The two listing processes run concurrently.
func Run(ctx context.Context, log *slog.Logger, execPath string) (*schema.Schema, error) {
	log = log.With("component", "introspect")
	log.Debug("Introspecting executable", "path", execPath)

	var propOut, cmdOut []byte

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := probe(ctx, execPath, "-list-properties")
		if err != nil {
			return fmt.Errorf("list properties: %w", err)
		}

		propOut = out

		return nil
	})

	g.Go(func() error {
		out, err := probe(ctx, execPath, "-input", "cmdlist")
		if err != nil {
			return fmt.Errorf("list commands: %w", err)
		}

		cmdOut = out

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s, err := Build(log, execPath, bytes.NewReader(propOut), bytes.NewReader(cmdOut))
	if err != nil {
		return nil, err
	}

	log.Info("Introspection complete",
		"properties", len(s.PropertyNames()),
		"commands", len(s.CommandNames()),
	)

	return s, nil
}

// probe runs one self-describing invocation of the executable, surfacing a
// non-zero exit as a ProcessError carrying the captured stderr.
func probe(ctx context.Context, execPath string, args ...string) ([]byte, error) {
	//nolint:gosec // G204: probing a caller-configured executable is the point
	out, err := exec.CommandContext(ctx, execPath, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &sdkerrors.ProcessError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   string(exitErr.Stderr),
				Err:      err,
			}
		}

		return nil, err
	}

	return out, nil
}

// Build parses the two capability listings into a schema. Properties are
// parsed first so that command name collisions can be detected.
func Build(log *slog.Logger, version string, properties, commands io.Reader) (*schema.Schema, error) {
	s := schema.New(version)

	if err := parseProperties(log, properties, s); err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}

	if err := parseCommands(log, commands, s); err != nil {
		return nil, fmt.Errorf("parse commands: %w", err)
	}

	return s, nil
}
