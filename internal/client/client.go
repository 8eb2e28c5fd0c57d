// Package client implements the per-endpoint connection state machine:
// connect, ingest the DRV_INFO catalog, serve command/response cycles, and
// reconnect on any socket-level error. Each Client owns exactly one
// net.Conn and runs its own dedicated goroutine for the blocking read loop,
// mirroring the one-goroutine-per-connection shape of the teacher's
// internal/ws/client.go. Writes are issued directly from the reactor
// goroutine: net.Conn tolerates concurrent Read/Write from different
// goroutines, so no additional synchronization is needed for the wire
// itself. The conn and state fields are guarded by a mutex, since both the
// read loop and the reactor goroutine write them; Catalog is written only
// by the reactor goroutine and is not locked.
package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ehrlich-b/drvsh/internal/registry"
	"github.com/ehrlich-b/drvsh/internal/wire"
)

// State names every node in spec §4.C's transition table.
type State int

const (
	StateDisconnected State = iota
	StateExpectSignature
	StateReadingInfoHeader
	StateReadingInfoBody
	StateIdle
	StateAwaitingResponse
	StateReadingRespHeader
	StateReadingRespBody
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateExpectSignature:
		return "expect_signature"
	case StateReadingInfoHeader:
		return "reading_info_header"
	case StateReadingInfoBody:
		return "reading_info_body"
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateReadingRespHeader:
		return "reading_resp_header"
	case StateReadingRespBody:
		return "reading_resp_body"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrNotReady is returned by Send when the client isn't in StateIdle.
var ErrNotReady = errors.New("client: not ready to accept a command")

// EventKind distinguishes the notifications a Client posts to the reactor's
// fan-in channel.
type EventKind int

const (
	EventInfo EventKind = iota
	EventResponse
	EventDisconnected
)

// Event is what a Client's read-loop goroutine posts onto the shared
// fan-in channel. The reactor goroutine is the only reader and the only
// mutator of Driver's attached state, preserving the no-locks invariant.
type Event struct {
	Driver   *registry.Driver
	Kind     EventKind
	Info     *wire.InfoFrame
	Response *wire.ResponseFrame
	Err      error
}

// Client owns one endpoint connection and its state machine.
type Client struct {
	Driver *registry.Driver
	Path   string
	ConnID string

	// Catalog is written only by the reactor goroutine (on EventInfo),
	// never by this client's own read loop — single-writer, no lock.
	Catalog []wire.CommandInfo

	connectTimeout time.Duration
	backoff        *Backoff
	log            *slog.Logger
	events         chan<- Event

	mu     sync.Mutex
	conn   net.Conn
	state  State
	closed bool
	stop   chan struct{}
}

// New constructs a Client for the endpoint at path. Call Start to begin
// connecting; events are posted to the supplied channel.
func New(driver *registry.Driver, path string, connectTimeout, backoffBase, backoffMax time.Duration, events chan<- Event, log *slog.Logger) *Client {
	return &Client{
		Driver:         driver,
		Path:           path,
		ConnID:         uuid.New().String(),
		connectTimeout: connectTimeout,
		backoff:        NewBackoff(backoffBase, backoffMax),
		log:            log,
		events:         events,
		state:          StateDisconnected,
		stop:           make(chan struct{}),
	}
}

// Start launches the client's dedicated connect/read-loop goroutine.
func (c *Client) Start() {
	go c.run()
}

// Stop tears down the client: cancels any pending I/O and closes the
// socket, matching §4.D's DELETED handling ("cancel pending I/O, close
// socket").
func (c *Client) Stop() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	close(c.stop)
	if conn != nil {
		conn.Close()
	}
}

// State reports the client's current state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Send writes a Command frame if the client is idle, arming a single
// ExpectSignature read per §5's "no pipelining" rule: a driver reply is
// always treated as the response to the most recently sent command.
func (c *Client) Send(frame wire.CommandFrame) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrNotReady
	}
	conn := c.conn
	c.state = StateAwaitingResponse
	c.mu.Unlock()

	if err := wire.WriteCommand(conn, frame); err != nil {
		c.setState(StateIdle)
		return err
	}
	return nil
}

// run owns the dial/serve/reconnect lifetime of the client. It mirrors
// spec §4.C's transition table exactly: Disconnected has exactly one
// outgoing edge on failure, straight to the terminal Closed — no retry
// loop. A drop of an established connection moves to Reconnecting, which
// itself gets exactly one further connect attempt; failure there is also
// terminal. Closed has no outgoing edge: once reached, this goroutine
// returns for good, and only a fresh discovery (a new EventCreated from
// the supervisor, spawning a brand-new Client) restarts the endpoint, per
// spec §7 ("retried on the next event against that endpoint, or removed
// on DELETED"). This single-shot-then-give-up shape matches the
// original's writer()/READ_ERROR_HANDLER, not the teacher's
// internal/ws/client.go, which redials forever. The EventDisconnected for a
// dropped connection is posted only once the reconnect attempt is over, so
// a prompt the reactor releases on it follows that attempt.
func (c *Client) run() {
	conn, err := c.dial()
	if err != nil {
		c.setState(StateClosed)
		c.emit(Event{Kind: EventDisconnected, Err: fmt.Errorf("connect: %w", err)})
		return
	}

	for {
		serveErr := c.serve(conn)
		conn.Close()

		c.mu.Lock()
		c.conn = nil
		c.state = StateReconnecting
		c.mu.Unlock()

		if !c.sleepBackoff() {
			return
		}
		select {
		case <-c.stop:
			return
		default:
		}

		next, err := c.dial()
		if err != nil {
			c.setState(StateClosed)
			c.emit(Event{Kind: EventDisconnected, Err: fmt.Errorf("reconnect after %v: %w", serveErr, err)})
			return
		}
		c.emit(Event{Kind: EventDisconnected, Err: serveErr})
		conn = next
	}
}

// dial makes the single connect attempt a Disconnected-or-Reconnecting
// client is entitled to, moving the state to ExpectSignature on success.
func (c *Client) dial() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.Path, c.connectTimeout)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.conn = conn
	c.state = StateExpectSignature
	c.mu.Unlock()
	c.backoff.Reset()
	return conn, nil
}

// serve reads frames off conn until a read error or an unrecognized
// signature, at which point it returns so run can reconnect.
func (c *Client) serve(conn net.Conn) error {
	for {
		sig, err := wire.ReadSignature(conn)
		if err != nil {
			return err
		}

		switch sig {
		case wire.SigInfo:
			c.setState(StateReadingInfoHeader)
			info, err := wire.ReadInfo(conn)
			if err != nil {
				return err
			}
			c.setState(StateIdle)
			c.emit(Event{Kind: EventInfo, Info: &info})
		case wire.SigResponse:
			c.setState(StateReadingRespHeader)
			resp, err := wire.ReadResponse(conn)
			if err != nil {
				return err
			}
			c.setState(StateIdle)
			c.emit(Event{Kind: EventResponse, Response: &resp})
		default:
			return fmt.Errorf("client: unexpected signature %v on read", sig)
		}
	}
}

func (c *Client) sleepBackoff() bool {
	d := c.backoff.Next()
	if c.log != nil {
		c.log.Debug("reconnecting", "driver", c.Driver.Name, "slot", c.Driver.Slot, "conn_id", c.ConnID, "delay", d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-c.stop:
		return false
	}
}

func (c *Client) emit(ev Event) {
	ev.Driver = c.Driver
	select {
	case c.events <- ev:
	case <-c.stop:
	}
}
