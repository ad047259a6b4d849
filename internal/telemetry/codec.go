// Package telemetry streams match snapshots to remote viewers.
//
// Frames are msgpack-encoded and lz4-compressed. A blake3 digest over the
// uncompressed snapshot encoding fingerprints a whole run for replay checks.
package telemetry

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
	"lukechampine.com/blake3"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

// Frame is one broadcast unit.
type Frame struct {
	Match    string        `msgpack:"m"`
	Seq      uint64        `msgpack:"q"`
	Snapshot *sim.Snapshot `msgpack:"s"`
}

// Encode serializes and compresses f.
func Encode(f *Frame) ([]byte, error) {
	raw, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", f.Seq, err)
	}
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress frame %d: %w", f.Seq, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress frame %d: %w", f.Seq, err)
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode.
func Decode(data []byte) (*Frame, error) {
	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decompress frame: %w", err)
	}
	var f Frame
	if err := msgpack.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &f, nil
}

// EncodeInput serializes a remote player's input event.
func EncodeInput(ev sim.InputEvent) ([]byte, error) {
	return msgpack.Marshal(&ev)
}

// DecodeInput parses a message written by EncodeInput.
func DecodeInput(data []byte) (sim.InputEvent, error) {
	var ev sim.InputEvent
	if err := msgpack.Unmarshal(data, &ev); err != nil {
		return sim.InputEvent{}, fmt.Errorf("decode input: %w", err)
	}
	return ev, nil
}

// Digest accumulates a blake3 hash over a sequence of snapshots. Two runs
// with the same seed and inputs produce the same digest.
type Digest struct {
	h     *blake3.Hasher
	count int
}

// NewDigest returns an empty digest.
func NewDigest() *Digest {
	return &Digest{h: blake3.New(32, nil)}
}

// Add folds snap into the digest.
func (d *Digest) Add(snap *sim.Snapshot) error {
	raw, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("digest tick %d: %w", snap.Tick, err)
	}
	_, _ = d.h.Write(raw)
	d.count++
	return nil
}

// Count returns how many snapshots were added.
func (d *Digest) Count() int { return d.count }

// Sum returns the hex digest so far. Adding more snapshots afterwards is
// allowed.
func (d *Digest) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}
