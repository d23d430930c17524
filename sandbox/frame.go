package sandbox

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxFrameSize bounds a single frame's declared length, so a corrupt or
// hostile length prefix can't make ReadFrame allocate unbounded memory.
const maxFrameSize = 64 << 20

// WriteFrame writes v as a single length-prefixed (u32 big-endian) JSON
// frame. Mirrors the original's u32_be-length + payload wire framing,
// with JSON standing in for bincode (no Go stdlib/pack equivalent of
// bincode exists; JSON is what this codebase already reaches for on
// every other wire boundary, e.g. registry/downloader.go's manifest
// cache).
func WriteFrame(w io.Writer, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling frame: %w", err)
	}
	if len(buf) > maxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds maximum of %d", len(buf), maxFrameSize)
	}

	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(buf)))
	if _, err := w.Write(lenBytes[:]); err != nil {
		return fmt.Errorf("writing frame length: %w", err)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed JSON frame into v.
func ReadFrame(r io.Reader, v any) error {
	var lenBytes [4]byte
	if _, err := io.ReadFull(r, lenBytes[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(lenBytes[:])
	if n > maxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds maximum of %d", n, maxFrameSize)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("reading frame body: %w", err)
	}

	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("unmarshaling frame: %w", err)
	}
	return nil
}
