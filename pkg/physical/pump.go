// Package physical provides the host-side, Linux-facing implementation of
// robus.Peripheral (SPEC_FULL.md §4.8): a real serial port for the wire
// and a pair of GPIO lines for the RS-485 transceiver's DE/RE.
package physical

import (
	"errors"
	"io"
	"log"

	"github.com/robus-bus/robus/pkg/robus"
)

// Pump runs p's receive path against core until ReadByte returns an
// error, feeding every byte to core.ReceiveByte exactly as the teacher's
// pkg/usock.readLoop feeds bytes to its own frame state machine. It
// drives both the real Adapter and pkg/physical/loopback the same way,
// since both satisfy robus.Peripheral identically.
//
// Pump blocks; callers run it in its own goroutine.
func Pump(p robus.Peripheral, core *robus.Core) {
	for {
		b, err := p.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("physical: read error, stopping pump: %v", err)
			}
			return
		}
		core.ReceiveByte(b)
	}
}
