// Package loopback provides an in-memory robus.Peripheral pair connected
// by buffered byte channels, for tests and the ring-of-nodes simulator
// (SPEC_FULL.md §4.9) where no real serial hardware is available.
package loopback

import (
	"io"
	"sync"
	"time"

	"github.com/robus-bus/robus/pkg/robus"
)

// peripheral is one end of a loopback Pair. ReadByte blocks on the
// channel fed by the peer's WriteByte, exactly as a real adapter's
// ReadByte blocks on the UART — see pkg/physical.Pump, which drives both
// kinds of Peripheral the same way.
type peripheral struct {
	baud uint32
	out  chan<- byte
	in   <-chan byte

	mu     sync.Mutex
	timer  *time.Timer
	onFire func()
}

// Pair returns two connected robus.Peripheral values: bytes written to a
// are delivered to b's ReadByte and vice versa. baud sizes the
// inter-frame timeout the same way a real line would.
func Pair(baud uint32) (a, b robus.Peripheral) {
	abuf := make(chan byte, robus.MaxMessageSize)
	bbuf := make(chan byte, robus.MaxMessageSize)

	pa := &peripheral{baud: baud, out: bbuf, in: abuf}
	pb := &peripheral{baud: baud, out: abuf, in: bbuf}
	return pa, pb
}

func (p *peripheral) Baudrate() uint32 { return p.baud }

func (p *peripheral) ReadByte() (byte, error) {
	b, ok := <-p.in
	if !ok {
		return 0, io.EOF
	}
	return b, nil
}

func (p *peripheral) WriteByte(b byte) error {
	p.out <- b
	return nil
}

func (p *peripheral) SetDriverEnable(bool)   {}
func (p *peripheral) SetReceiverEnable(bool) {}

func (p *peripheral) SetTimeoutHandler(fn func()) {
	p.mu.Lock()
	p.onFire = fn
	p.mu.Unlock()
}

func (p *peripheral) StartTimeout(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	if d <= 0 {
		return
	}
	p.timer = time.AfterFunc(d, func() {
		p.mu.Lock()
		fn := p.onFire
		p.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}
