package sandbox

import (
	"bytes"
	"testing"
)

func TestFrameRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	req := Request{Kind: KindRun, Run: &RequestRun{Argv: []string{"/bin/true"}}}

	if err := WriteFrame(&buf, req); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	var got Request
	if err := ReadFrame(&buf, &got); err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if got.Kind != KindRun || got.Run == nil || len(got.Run.Argv) != 1 || got.Run.Argv[0] != "/bin/true" {
		t.Fatalf("ReadFrame() = %+v", got)
	}
}

func TestFrameRejectsOversized(t *testing.T) {
	var buf bytes.Buffer
	big := make([]byte, 0)
	req := Request{Kind: KindWriteFd, WriteFd: &RequestWriteFd{Fd: 1, Data: big}}
	if err := WriteFrame(&buf, req); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	// A well-formed small frame must still round-trip fine.
	var got Request
	if err := ReadFrame(&buf, &got); err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}

	// A length prefix over maxFrameSize is rejected before any body is read.
	oversized := bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	if err := ReadFrame(oversized, &got); err == nil {
		t.Fatal("expected ReadFrame to reject a frame length over maxFrameSize")
	}
}

func TestResponseResult(t *testing.T) {
	ok := 7
	r := Response{Ok: &ok}
	n, err := r.Result()
	if err != nil || n != 7 {
		t.Fatalf("Result() = %d, %v", n, err)
	}

	msg := "boom"
	r = Response{Err: &msg}
	if _, err := r.Result(); err == nil || err.Error() != "boom" {
		t.Fatalf("Result() error = %v", err)
	}
}
