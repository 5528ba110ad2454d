package mplayersdk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/mplayer-sdk-go/internal/broadcast"
	"github.com/wagiedev/mplayer-sdk-go/internal/cli"
	"github.com/wagiedev/mplayer-sdk-go/internal/errors"
	"github.com/wagiedev/mplayer-sdk-go/internal/introspect"
	"github.com/wagiedev/mplayer-sdk-go/internal/schema"
	"github.com/wagiedev/mplayer-sdk-go/internal/subprocess"
	"github.com/wagiedev/mplayer-sdk-go/internal/wire"
)

// process is the supervisor surface the player needs. It is satisfied by
// subprocess.Process and by test fakes.
type process interface {
	Spawn(ctx context.Context) error
	Alive() bool
	WriteLine(line string) error
	Terminate(code int) (int, bool)
	Stdout() io.Reader
	Stderr() io.Reader
	PID() int
}

// Compile-time verification that the supervisor satisfies the player's view.
var _ process = (*subprocess.Process)(nil)

// Player is an out-of-process wrapper for MPlayer. It exposes the
// executable's runtime-discovered commands and properties as a typed,
// validated call surface, plus lifecycle operations and pub/sub access to
// the process output streams.
//
// MPlayer is always started in slave, idle, and quiet modes with default key
// bindings and config files disabled, so all control happens through the
// line protocol.
//
// A Player is safe for concurrent use. Commands issued while the process is
// not running are silently ignored: call sites racing with process exit do
// not have to handle an error for a command that has become meaningless.
type Player struct {
	log  *slog.Logger
	id   string
	path string
	args []string

	schema *schema.Schema // nil when introspection failed

	proc   process
	stdout *broadcast.Broadcaster
	stderr *broadcast.Broadcaster
	chnl   *wire.Channel
}

// New creates a player.
//
// New locates the mplayer executable and, unless a schema is injected with
// WithSchema, introspects it to build the capability surface. If the
// executable cannot be located or probed, the player is still constructed
// and usable for lifecycle operations, but exposes no properties or
// commands; property and command calls then return ErrNoSchema.
func New(opts ...Option) (*Player, error) {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	id := ulid.Make().String()
	log = log.With("component", "player", "player_id", id)

	args := append([]string(nil), options.Args...)

	if options.ArgString != "" {
		split, err := cli.SplitArgs(options.ArgString)
		if err != nil {
			return nil, err
		}

		args = append(args, split...)
	}

	p := &Player{
		log:  log,
		id:   id,
		args: args,
	}

	discoverer := cli.NewDiscoverer(&cli.Config{Path: options.Path, Logger: log})

	path, err := discoverer.Discover()

	switch {
	case err != nil:
		// Degraded: keep the configured name for a later spawn attempt,
		// but skip introspection.
		log.Warn("Executable not found, player degraded to lifecycle-only", "error", err)

		path = options.Path
		if path == "" {
			path = cli.DefaultExecutable
		}

		p.schema = options.Schema
	case options.Schema != nil:
		// An injected schema is authoritative for this executable; seed
		// the cache so later players on the same binary skip the probe.
		p.schema = options.Schema
		introspect.Store(path, options.Schema)
	default:
		s, ierr := introspect.Load(context.Background(), log, path)
		if ierr != nil {
			log.Warn("Introspection failed, player degraded to lifecycle-only", "error", ierr)
		} else {
			p.schema = s
		}
	}

	p.path = path
	p.stdout = broadcast.New(log, "stdout")
	p.stderr = broadcast.New(log, "stderr")
	p.bindProcess(subprocess.NewProcess(log, path, cli.BuildArgs(args)), options.DefaultPrefix)

	if options.Autospawn {
		if err := p.Spawn(context.Background()); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// bindProcess wires the command channel to a supervisor.
func (p *Player) bindProcess(proc process, prefix Prefix) {
	p.proc = proc
	p.chnl = wire.NewChannel(p.log, proc, p.stdout, prefix)
}

// Spawn starts the underlying mplayer process and attaches both output
// broadcasters to its streams. It is a no-op if the process is already
// alive.
func (p *Player) Spawn(ctx context.Context) error {
	if err := p.proc.Spawn(ctx); err != nil {
		return err
	}

	p.stdout.Attach(p.proc.Stdout())
	p.stderr.Attach(p.proc.Stderr())

	return nil
}

// IsAlive reports whether the mplayer process is running.
func (p *Player) IsAlive() bool {
	return p.proc.Alive()
}

// Terminate stops the mplayer process by sending the quit command (never
// prefixed) and waiting for it to exit, returning its exit status. Both
// broadcasters are detached first so subscribers stop receiving stale reads.
// Terminating a process that is not running is a no-op reporting ok=false.
func (p *Player) Terminate(code int) (int, bool) {
	p.stdout.Detach()
	p.stderr.Detach()

	return p.proc.Terminate(code)
}

// Close terminates the process with exit code 0. It exists so that teardown
// can be deferred on every exit path of the player's owner; it never fails.
func (p *Player) Close() error {
	p.Terminate(0)

	return nil
}

// Stdout returns the broadcaster for the process standard output.
func (p *Player) Stdout() *Broadcaster {
	return p.stdout
}

// Stderr returns the broadcaster for the process standard error.
func (p *Player) Stderr() *Broadcaster {
	return p.stderr
}

// Path returns the resolved executable path.
func (p *Player) Path() string {
	return p.path
}

// Args returns the caller-supplied arguments, without the always-prepended
// protocol flags.
func (p *Player) Args() []string {
	return append([]string(nil), p.args...)
}

// PID returns the process ID of the running player, or 0.
func (p *Player) PID() int {
	return p.proc.PID()
}

// Properties returns the names of all discovered properties, sorted.
func (p *Player) Properties() []string {
	if p.schema == nil {
		return nil
	}

	return p.schema.PropertyNames()
}

// Commands returns the names of all discovered commands, sorted.
func (p *Player) Commands() []string {
	if p.schema == nil {
		return nil
	}

	return p.schema.CommandNames()
}

// Schema returns the player's capability schema, or nil when introspection
// failed and none was injected. The schema serializes to JSON and can be
// injected into another player with WithSchema.
func (p *Player) Schema() *CapabilitySchema {
	return p.schema
}

// PropertyInfo returns the spec of a discovered property.
func (p *Player) PropertyInfo(name string) (*PropertySpec, bool) {
	if p.schema == nil {
		return nil, false
	}

	return p.schema.Property(name)
}

// CommandInfo returns the spec of a discovered command.
func (p *Player) CommandInfo(name string) (*CommandSpec, bool) {
	if p.schema == nil {
		return nil, false
	}

	return p.schema.Command(name)
}

// Get queries a property and returns its value typed per the property spec:
// bool, int, float64, string, or map[string]string.
//
// A nil value with a nil error means the player reported no value, or the
// process is not running. An AnswerError is returned when the player
// explicitly answered with an error line.
//
// The exchange blocks until the matching answer line arrives; the context
// is consulted between answer lines.
func (p *Player) Get(ctx context.Context, name string) (any, error) {
	spec, err := p.property(name)
	if err != nil {
		return nil, err
	}

	ans, ok, err := p.chnl.Send(ctx, "get_property", []any{spec.WireName}, nil, PrefixNone)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	return convertAnswer(spec, ans)
}

// convertAnswer maps a raw answer payload to the property's semantic type.
func convertAnswer(spec *schema.PropertySpec, ans string) (any, error) {
	switch spec.Type {
	case schema.Bool:
		return ans == "yes", nil
	case schema.Int:
		v, err := strconv.Atoi(ans)
		if err != nil {
			return nil, fmt.Errorf("parse %s answer %q: %w", spec.Name, ans, err)
		}

		return v, nil
	case schema.Float:
		v, err := strconv.ParseFloat(ans, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s answer %q: %w", spec.Name, ans, err)
		}

		return v, nil
	case schema.StringMap:
		parts := strings.Split(ans, ",")
		m := make(map[string]string, len(parts)/2)

		for i := 0; i+1 < len(parts); i += 2 {
			m[parts[i]] = parts[i+1]
		}

		return m, nil
	default:
		return ans, nil
	}
}

// Set assigns a property value.
//
// An absolute value must match the property's semantic type and declared
// bounds; violations fail with a ValidationError or RangeError before any
// line is transmitted. A Step value emits the step variant of the wire
// command instead and bypasses bounds validation. Setting while the process
// is not running is a silent no-op.
func (p *Player) Set(ctx context.Context, name string, value any) error {
	spec, err := p.property(name)
	if err != nil {
		return err
	}

	if !spec.Settable {
		return &errors.ReadOnlyError{Property: name}
	}

	if step, ok := value.(Step); ok {
		return p.setStep(ctx, spec, step)
	}

	if !spec.Type.Matches(value) {
		return &errors.ValidationError{Expected: spec.Type.String()}
	}

	if spec.Type != schema.Bool {
		if err := checkBounds(spec, value); err != nil {
			return err
		}
	}

	_, _, err = p.chnl.Send(ctx, "set_property", []any{spec.WireName, value}, nil, PrefixNone)

	return err
}

func (p *Player) setStep(ctx context.Context, spec *schema.PropertySpec, step Step) error {
	// Boolean steps carry no magnitude: the bare step command toggles.
	args := []any{spec.WireName}
	if spec.Type != schema.Bool {
		args = append(args, step.Value, step.Direction)
	}

	_, _, err := p.chnl.Send(ctx, "step_property", args, nil, PrefixNone)

	return err
}

func checkBounds(spec *schema.PropertySpec, value any) error {
	var f float64

	switch v := value.(type) {
	case int:
		f = float64(v)
	case float64:
		f = v
	default:
		return nil
	}

	if (spec.Min != nil && f < *spec.Min) || (spec.Max != nil && f > *spec.Max) {
		return &errors.RangeError{
			Property: spec.Name,
			Value:    value,
			Min:      spec.Min,
			Max:      spec.Max,
		}
	}

	return nil
}

// Call invokes a discovered command with positional typed arguments, using
// the player's default prefix. Trailing optional arguments may be omitted.
//
// Metadata getter commands return their answer payload with ok=true; all
// other commands return an empty answer. Calling while the process is not
// running is a silent no-op.
func (p *Player) Call(ctx context.Context, name string, args ...any) (string, bool, error) {
	return p.CallWith(ctx, PrefixNone, name, args...)
}

// CallWith invokes a discovered command with an explicit prefix override.
func (p *Player) CallWith(ctx context.Context, prefix Prefix, name string, args ...any) (string, bool, error) {
	if p.schema == nil {
		return "", false, errors.ErrNoSchema
	}

	cmd, ok := p.schema.Command(name)
	if !ok {
		return "", false, &errors.UnknownNameError{Kind: "command", Name: name}
	}

	required := cmd.Required()
	if len(args) < required || len(args) > len(cmd.Params) {
		return "", false, &errors.ValidationError{
			Expected: fmt.Sprintf("%d to %d arguments for %s, got %d",
				required, len(cmd.Params), name, len(args)),
		}
	}

	types := make([]schema.Type, len(cmd.Params))
	for i, param := range cmd.Params {
		types[i] = param.Type
	}

	return p.chnl.Send(ctx, name, args, types, prefix)
}

// DefaultPrefix returns the player's configured default command prefix.
func (p *Player) DefaultPrefix() Prefix {
	return p.chnl.DefaultPrefix()
}

func (p *Player) property(name string) (*schema.PropertySpec, error) {
	if p.schema == nil {
		return nil, errors.ErrNoSchema
	}

	spec, ok := p.schema.Property(name)
	if !ok {
		return nil, &errors.UnknownNameError{Kind: "property", Name: name}
	}

	return spec, nil
}
