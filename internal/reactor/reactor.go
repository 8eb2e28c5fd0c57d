// Package reactor ties the discovery supervisor, the per-driver clients,
// and the console dispatcher together behind one event loop. spec.md
// treats the reactor itself as an out-of-scope external collaborator (a
// single-threaded readiness loop over file descriptors); Go exposes no
// such primitive to application code, so this package reproduces the same
// ownership discipline — one goroutine exclusively owns the registry, the
// catalog of every driver, and the output stream — with a select loop over
// channels instead of raw readiness callbacks. This is the same shape as
// the teacher's internal/daemon/daemon.go (one select over a handful of
// channels driving top-level control flow).
package reactor

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ehrlich-b/drvsh/internal/client"
	"github.com/ehrlich-b/drvsh/internal/console"
	"github.com/ehrlich-b/drvsh/internal/registry"
	"github.com/ehrlich-b/drvsh/internal/supervisor"
)

// Reactor owns every piece of shared state named in spec §5: the
// registry, each driver's installed catalog, and the output stream. All of
// it is touched only from the goroutine running Run.
type Reactor struct {
	Suffix         string
	ConnectTimeout time.Duration
	BackoffBase    time.Duration
	BackoffMax     time.Duration

	Registry   *registry.Registry
	Supervisor *supervisor.Supervisor
	Dispatcher *console.Dispatcher

	In  io.Reader
	Out io.Writer
	Log *slog.Logger

	clientEvents chan client.Event
	awaiting     map[*registry.Driver]bool
}

// New wires a Reactor for the given base directory. It does not start the
// supervisor or the input scanner; call Run for that.
func New(baseDir, suffix string, connectTimeout, backoffBase, backoffMax time.Duration, in io.Reader, out io.Writer, log *slog.Logger) (*Reactor, error) {
	reg := registry.New()
	sup, err := supervisor.New(baseDir, suffix, log)
	if err != nil {
		return nil, err
	}
	return &Reactor{
		Suffix:         suffix,
		ConnectTimeout: connectTimeout,
		BackoffBase:    backoffBase,
		BackoffMax:     backoffMax,
		Registry:       reg,
		Supervisor:     sup,
		Dispatcher:     &console.Dispatcher{Registry: reg},
		In:             in,
		Out:            out,
		Log:            log,
		clientEvents:   make(chan client.Event, 256),
		awaiting:       make(map[*registry.Driver]bool),
	}, nil
}

// Run is the event loop. It returns nil on clean termination (EOF on
// input, or base-directory deletion per spec §6) and a non-nil error on
// the fatal conditions spec §7 names.
func (r *Reactor) Run() error {
	lines := make(chan string)
	lineErr := make(chan error, 1)
	go r.scanInput(lines, lineErr)

	go r.Supervisor.Run()
	if err := r.Supervisor.Scan(); err != nil {
		return fmt.Errorf("reactor: initial scan: %w", err)
	}

	r.printPrompt()

	for {
		select {
		case ev, ok := <-r.Supervisor.Events():
			if !ok {
				return nil
			}
			if ev.Kind == supervisor.EventSelfDeleted {
				r.Log.Info("base directory removed, stopping")
				return nil
			}
			r.handleSupervisorEvent(ev)

		case line, ok := <-lines:
			if !ok {
				return <-lineErr
			}
			r.handleLine(line)

		case ev := <-r.clientEvents:
			r.handleClientEvent(ev)
		}
	}
}

func (r *Reactor) scanInput(lines chan<- string, errc chan<- error) {
	defer close(lines)
	scanner := bufio.NewScanner(r.In)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
	errc <- scanner.Err()
}

func (r *Reactor) handleSupervisorEvent(ev supervisor.Event) {
	switch ev.Kind {
	case supervisor.EventCreated:
		drv, err := r.Registry.Insert(ev.Identity.Name, ev.Identity.Slot)
		if err != nil {
			// spec §7: duplicate (driver, slot) discovery is fatal.
			r.Log.Error("duplicate driver identity", "name", ev.Identity.Name, "slot", ev.Identity.Slot)
			os.Exit(1)
		}
		c := client.New(drv, ev.Path, r.ConnectTimeout, r.BackoffBase, r.BackoffMax, r.clientEvents, r.Log)
		drv.State = c
		c.Start()
		r.Log.Info("driver discovered", "name", drv.Name, "slot", drv.Slot, "path", ev.Path)

	case supervisor.EventRemoved:
		drv := r.Registry.Lookup(ev.Identity.Name, ev.Identity.Slot)
		if drv == nil {
			r.Log.Warn("delete event for unknown driver", "name", ev.Identity.Name, "slot", ev.Identity.Slot)
			return
		}
		if c, ok := drv.State.(*client.Client); ok {
			c.Stop()
		}
		r.Registry.Remove(ev.Identity.Name, ev.Identity.Slot)
		if r.awaiting[drv] {
			delete(r.awaiting, drv)
			r.printPrompt()
		}
		r.Log.Info("driver removed", "name", ev.Identity.Name, "slot", ev.Identity.Slot)
	}
}

func (r *Reactor) handleLine(line string) {
	out := r.Dispatcher.Dispatch(line)
	for _, l := range out.Lines {
		fmt.Fprintln(r.Out, l)
	}
	if out.PromptNow {
		r.printPrompt()
		return
	}
	r.awaiting[out.Driver] = true
}

func (r *Reactor) handleClientEvent(ev client.Event) {
	switch ev.Kind {
	case client.EventInfo:
		if c, ok := ev.Driver.State.(*client.Client); ok {
			c.Catalog = ev.Info.Commands
		}

	case client.EventResponse:
		fmt.Fprintln(r.Out, string(ev.Response.Payload))
		if r.awaiting[ev.Driver] {
			delete(r.awaiting, ev.Driver)
		}
		r.printPrompt()

	case client.EventDisconnected:
		if ev.Err != nil {
			r.Log.Debug("driver connection dropped", "name", ev.Driver.Name, "slot", ev.Driver.Slot, "err", ev.Err)
		}
		// The catalog stays empty until the new connection's DRV_INFO
		// installs a fresh one.
		if c, ok := ev.Driver.State.(*client.Client); ok {
			c.Catalog = nil
		}
		// Only release a deferred prompt: routine reconnect churn with no
		// command outstanding must stay silent (spec §4.F: the prompt for
		// "cmd" is printed after the eventual response or reconnect, never
		// at enqueue time, and never for unrelated reconnect noise).
		if r.awaiting[ev.Driver] {
			delete(r.awaiting, ev.Driver)
			r.printPrompt()
		}
	}
}

func (r *Reactor) printPrompt() {
	fmt.Fprint(r.Out, "> ")
}
