package client

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/ehrlich-b/drvsh/internal/registry"
	"github.com/ehrlich-b/drvsh/internal/wire"
)

func listenUnix(t *testing.T) (net.Listener, string) {
	t.Helper()
	sockPath := filepath.Join(t.TempDir(), "thermo.3.drv")
	l, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	return l, sockPath
}

func TestClientReceivesInfoThenResponse(t *testing.T) {
	l, sockPath := listenUnix(t)
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	driver := &registry.Driver{Name: "thermo", Slot: 3}
	events := make(chan Event, 8)
	c := New(driver, sockPath, time.Second, 10*time.Millisecond, 100*time.Millisecond, events, nil)
	c.Start()
	defer c.Stop()

	conn := <-accepted
	defer conn.Close()

	if err := wire.WriteInfo(conn, wire.InfoFrame{Commands: []wire.CommandInfo{
		{Name: "read", Descr: "get temperature", Arity: 0},
	}}); err != nil {
		t.Fatalf("WriteInfo: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Kind != EventInfo {
			t.Fatalf("event kind = %v, want EventInfo", ev.Kind)
		}
		if len(ev.Info.Commands) != 1 || ev.Info.Commands[0].Name != "read" {
			t.Fatalf("unexpected info payload: %+v", ev.Info)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for EventInfo")
	}

	if got := c.State(); got != StateIdle {
		t.Fatalf("state after info = %v, want Idle", got)
	}

	if err := c.Send(wire.CommandFrame{CmdIdx: 0}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := c.State(); got != StateAwaitingResponse {
		t.Fatalf("state after send = %v, want AwaitingResponse", got)
	}

	sig, err := wire.ReadSignature(conn)
	if err != nil || sig != wire.SigCommand {
		t.Fatalf("driver side did not observe command frame: sig=%v err=%v", sig, err)
	}
	if _, err := wire.ReadCommand(conn); err != nil {
		t.Fatalf("ReadCommand: %v", err)
	}

	if err := wire.WriteResponse(conn, wire.ResponseFrame{Payload: []byte("21C")}); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Kind != EventResponse {
			t.Fatalf("event kind = %v, want EventResponse", ev.Kind)
		}
		if string(ev.Response.Payload) != "21C" {
			t.Fatalf("payload = %q, want 21C", ev.Response.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for EventResponse")
	}
}

func TestSendRejectedWhenNotIdle(t *testing.T) {
	driver := &registry.Driver{Name: "pump", Slot: 0}
	events := make(chan Event, 8)
	c := New(driver, filepath.Join(t.TempDir(), "missing.sock"), 50*time.Millisecond, 10*time.Millisecond, 50*time.Millisecond, events, nil)
	// Never started, so state remains Disconnected.
	if err := c.Send(wire.CommandFrame{CmdIdx: 0}); err != ErrNotReady {
		t.Fatalf("Send on non-idle client = %v, want ErrNotReady", err)
	}
}

func TestClientReconnectsAfterDisconnect(t *testing.T) {
	l, sockPath := listenUnix(t)
	defer l.Close()

	accepted := make(chan net.Conn, 2)
	go func() {
		for i := 0; i < 2; i++ {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			accepted <- conn
		}
	}()

	driver := &registry.Driver{Name: "thermo", Slot: 3}
	events := make(chan Event, 8)
	c := New(driver, sockPath, time.Second, 10*time.Millisecond, 50*time.Millisecond, events, nil)
	c.Start()
	defer c.Stop()

	first := <-accepted
	first.Close() // simulate the driver dropping the connection

	select {
	case ev := <-events:
		if ev.Kind != EventDisconnected {
			t.Fatalf("event kind = %v, want EventDisconnected", ev.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for EventDisconnected")
	}

	select {
	case second := <-accepted:
		second.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("client never reconnected")
	}
}
