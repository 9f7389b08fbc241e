// Package recorder persists sniffed bus frames for offline inspection —
// the callback a Sniffer-typed module registers (SPEC_FULL.md §4.11).
package recorder

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/robus-bus/robus/pkg/robus"
)

// record is the CBOR-encoded shape written per frame, mirroring the
// teacher's writeUARTMessage marshal-then-log-hex convention
// (pkg/service/helpers.go) applied to a whole frame instead of one field.
type record struct {
	TargetMode uint8  `cbor:"target_mode"`
	Target     uint16 `cbor:"target"`
	Source     uint16 `cbor:"source"`
	Command    uint8  `cbor:"command"`
	Data       []byte `cbor:"data"`
}

// Recorder CBOR-encodes every observed Message into a length-prefixed
// stream on w, so a single io.Writer can hold many frames back to back.
type Recorder struct {
	mu sync.Mutex
	w  io.Writer
}

// New wraps w. w is typically an *os.File opened for append.
func New(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// Observe is the module callback signature (func(robus.Message)) a
// Sniffer-typed module registers via Core.CreateModule.
func (r *Recorder) Observe(msg robus.Message) {
	if err := r.write(msg); err != nil {
		// Best-effort: a recording failure must never affect bus
		// dispatch (spec.md §7 — wire errors never reach callbacks, and
		// by extension a callback's own bookkeeping failures must not
		// propagate back into the core either).
		return
	}
}

func (r *Recorder) write(msg robus.Message) error {
	rec := record{
		TargetMode: uint8(msg.Header.TargetMode),
		Target:     msg.Header.Target,
		Source:     msg.Header.Source,
		Command:    uint8(msg.Header.Command),
		Data:       msg.Data,
	}

	encoded, err := cbor.Marshal(rec)
	if err != nil {
		return fmt.Errorf("recorder: marshal cbor: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(encoded)))
	if _, err := r.w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("recorder: write length prefix: %w", err)
	}
	if _, err := r.w.Write(encoded); err != nil {
		return fmt.Errorf("recorder: write record: %w", err)
	}
	return nil
}

// ReadAll decodes every length-prefixed CBOR record from r, for offline
// replay/inspection tooling.
func ReadAll(r io.Reader) ([]robus.Message, error) {
	var out []robus.Message
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return out, fmt.Errorf("recorder: read length prefix: %w", err)
		}
		n := binary.LittleEndian.Uint32(lenBuf[:])

		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return out, fmt.Errorf("recorder: read record: %w", err)
		}

		var rec record
		if err := cbor.Unmarshal(buf, &rec); err != nil {
			return out, fmt.Errorf("recorder: unmarshal cbor: %w", err)
		}

		out = append(out, robus.Message{
			Header: robus.Header{
				Protocol:   robus.ProtocolVersion,
				Target:     rec.Target,
				TargetMode: robus.TargetMode(rec.TargetMode),
				Source:     rec.Source,
				Command:    robus.Command(rec.Command),
				DataSize:   len(rec.Data),
			},
			Data: rec.Data,
		})
	}
}
