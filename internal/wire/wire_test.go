package wire

import (
	"bytes"
	"strings"
	"testing"
)

func TestCommandRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := CommandFrame{CmdIdx: 7, Args: [][]byte{[]byte("42"), []byte("hello")}}
	if err := WriteCommand(&buf, want); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}

	sig, err := ReadSignature(&buf)
	if err != nil {
		t.Fatalf("ReadSignature: %v", err)
	}
	if sig != SigCommand {
		t.Fatalf("signature = %v, want SigCommand", sig)
	}

	got, err := ReadCommand(&buf)
	if err != nil {
		t.Fatalf("ReadCommand: %v", err)
	}
	if got.CmdIdx != want.CmdIdx || len(got.Args) != len(want.Args) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want.Args {
		if !bytes.Equal(got.Args[i], want.Args[i]) {
			t.Errorf("arg[%d] = %q, want %q", i, got.Args[i], want.Args[i])
		}
	}
}

func TestWriteCommandRejectsOverlongArgument(t *testing.T) {
	var buf bytes.Buffer
	ok := strings.Repeat("a", 255)
	if err := WriteCommand(&buf, CommandFrame{Args: [][]byte{[]byte(ok)}}); err != nil {
		t.Fatalf("255-byte argument should be accepted: %v", err)
	}

	buf.Reset()
	tooLong := strings.Repeat("a", 256)
	if err := WriteCommand(&buf, CommandFrame{Args: [][]byte{[]byte(tooLong)}}); err == nil {
		t.Fatalf("256-byte argument should be rejected")
	}
}

func TestInfoRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := InfoFrame{Commands: []CommandInfo{
		{Name: "read", Descr: "get temperature", Arity: 0},
		{Name: "set", Descr: "assign setpoint", Arity: 1},
	}}
	if err := WriteInfo(&buf, want); err != nil {
		t.Fatalf("WriteInfo: %v", err)
	}

	sig, err := ReadSignature(&buf)
	if err != nil || sig != SigInfo {
		t.Fatalf("signature = %v, %v", sig, err)
	}
	got, err := ReadInfo(&buf)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if len(got.Commands) != len(want.Commands) {
		t.Fatalf("got %d commands, want %d", len(got.Commands), len(want.Commands))
	}
	for i := range want.Commands {
		if got.Commands[i] != want.Commands[i] {
			t.Errorf("command[%d] = %+v, want %+v", i, got.Commands[i], want.Commands[i])
		}
	}
}

func TestInfoEmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInfo(&buf, InfoFrame{}); err != nil {
		t.Fatalf("WriteInfo: %v", err)
	}
	ReadSignature(&buf)
	got, err := ReadInfo(&buf)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if len(got.Commands) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(got.Commands))
	}
}

func TestResponseRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := ResponseFrame{Payload: []byte("ok")}
	if err := WriteResponse(&buf, want); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}
	sig, err := ReadSignature(&buf)
	if err != nil || sig != SigResponse {
		t.Fatalf("signature = %v, %v", sig, err)
	}
	got, err := ReadResponse(&buf)
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if !bytes.Equal(got.Payload, want.Payload) {
		t.Errorf("payload = %q, want %q", got.Payload, want.Payload)
	}
}

// TestPartialReads verifies the codec tolerates a reader that only ever
// hands back one byte at a time, reproducing spec §3's "partial frames are
// legal" contract.
func TestPartialReads(t *testing.T) {
	var buf bytes.Buffer
	WriteResponse(&buf, ResponseFrame{Payload: []byte("partial-ok")})

	r := &oneByteReader{r: &buf}
	sig, err := ReadSignature(r)
	if err != nil || sig != SigResponse {
		t.Fatalf("signature = %v, %v", sig, err)
	}
	got, err := ReadResponse(r)
	if err != nil {
		t.Fatalf("ReadResponse over one-byte reads: %v", err)
	}
	if string(got.Payload) != "partial-ok" {
		t.Errorf("payload = %q", got.Payload)
	}
}

type oneByteReader struct {
	r *bytes.Buffer
}

func (o *oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := o.r.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}
