package robus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Telemetry is the optional observability collaborator a Core reports
// frame events to (SPEC_FULL.md §4.10). A Core built without one simply
// skips every call — see the nil checks in this file.
type Telemetry interface {
	FrameDispatched(msg Message)
	FrameDropped(reason string)
	TxLockHeld(held bool)
}

// dispatchQueueSize bounds how many completed frames may be waiting for
// Core.dispatchLoop at once. Generous relative to spec.md §4's single-slot
// Queue: dispatchLoop drains far faster than frames can arrive at any
// plausible baud rate, this just keeps ReceiveByte from ever blocking on
// a momentarily slow callback.
const dispatchQueueSize = 32

// Core owns the registry, the receive accumulator, and the peripheral
// handle for one physical node (spec.md §4.5). It is the only exported
// entry point into the protocol engine.
type Core struct {
	peripheral Peripheral
	registry   *registry
	accum      *accumulator
	telemetry  Telemetry

	txLock atomic.Bool
	mu     sync.Mutex // serializes Send calls against each other

	dispatchq chan Message
}

var initOnce sync.Once

// Init constructs the Core for this process. Per spec.md §6 a second call
// is a programmer error: the protocol engine is meant to own exactly one
// Peripheral for the process's lifetime, so Init panics rather than
// silently handing back two independent Cores that would fight over the
// same wire.
func Init(p Peripheral) *Core {
	var c *Core
	called := false
	initOnce.Do(func() {
		c = NewCore(p)
		called = true
	})
	if !called {
		panic("robus: Init called more than once")
	}
	return c
}

// NewCore builds a Core without the process-wide single-init guard. Init
// is the right entry point for an actual node; NewCore exists for tests
// and for multi-node harnesses (cmd/robussim's ring of nodes,
// SPEC_FULL.md component C13) where several independent Cores legitimately
// coexist in one process.
func NewCore(p Peripheral) *Core {
	c := &Core{
		peripheral: p,
		registry:   newRegistry(),
		accum:      newAccumulator(),
		dispatchq:  make(chan Message, dispatchQueueSize),
	}
	p.SetTimeoutHandler(c.OnTimeout)
	p.SetReceiverEnable(false)
	p.SetDriverEnable(false)
	go c.dispatchLoop()
	return c
}

// SetTelemetry attaches the optional observability collaborator. Passing
// nil detaches it.
func (c *Core) SetTelemetry(t Telemetry) {
	c.telemetry = t
}

// CreateModule registers a new local module and returns its handle. cb may
// be nil for a send-only module; dispatchLoop skips nil callbacks rather
// than invoking them.
func (c *Core) CreateModule(alias string, modType ModuleType, cb func(Message)) (ModuleHandle, error) {
	return c.registry.create(alias, modType, cb)
}

// SetModuleID assigns the 12-bit bus id for a previously created module.
func (c *Core) SetModuleID(h ModuleHandle, id uint16) {
	c.registry.setID(h, id)
}

// interFrameTimeout is two ten-bit byte-times at the peripheral's current
// baud rate (spec.md §4.6, §9's "pick one formulation" resolved in
// DESIGN.md): ceil(10 * bitTime * 2).
func interFrameTimeout(baud uint32) time.Duration {
	if baud == 0 {
		return 0
	}
	// 20 bit-times, rounded up to the next whole nanosecond.
	return time.Duration((20*int64(time.Second) + int64(baud) - 1) / int64(baud))
}

// Send transmits msg on behalf of the module identified by h, following
// the five steps of spec.md §4.5: stamp source, acquire the TX-lock,
// switch the transceiver to transmit, emit the frame, then switch back to
// receive and arm the idle-guard timer. Send returns with the TX-lock still
// held; OnTimeout releases it when the timer fires.
func (c *Core) Send(h ModuleHandle, msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg.Header.Source = c.registry.get(h).ID

	encoded, err := msg.Encode()
	if err != nil {
		return err
	}

	for !c.txLock.CompareAndSwap(false, true) {
		// Busy-wait: an incoming byte may win the race and take the
		// lock first (spec.md §5); we simply try again.
	}
	if c.telemetry != nil {
		c.telemetry.TxLockHeld(true)
	}

	c.peripheral.SetDriverEnable(true)
	c.peripheral.SetReceiverEnable(true)

	for _, b := range encoded {
		if err := c.peripheral.WriteByte(b); err != nil {
			c.peripheral.SetDriverEnable(false)
			c.peripheral.SetReceiverEnable(false)
			c.txLock.Store(false)
			if c.telemetry != nil {
				c.telemetry.TxLockHeld(false)
			}
			return err
		}
		// The source unconditionally feeds sent bytes back through its
		// own receive path ("is this local loop a good idea?" —
		// original_source/src/robus_core.rs); kept here for parity so a
		// module's own frames reach any locally-registered Sniffer.
		c.ReceiveByte(b)
	}

	c.peripheral.SetDriverEnable(false)
	c.peripheral.SetReceiverEnable(false)
	c.peripheral.StartTimeout(interFrameTimeout(c.peripheral.Baudrate()))
	// TX-lock stays held; OnTimeout releases it once the idle guard
	// elapses (spec.md §4.6).
	return nil
}

// ReceiveByte is the ISR entry point: incoming activity reserves the line
// (sets the TX-lock), restarts the inter-frame timer, and feeds the byte
// to the accumulator, dispatching to local modules on frame completion
// (spec.md §4.5).
func (c *Core) ReceiveByte(b byte) {
	wasFree := !c.txLock.Swap(true)
	if wasFree && c.telemetry != nil {
		c.telemetry.TxLockHeld(true)
	}
	c.peripheral.StartTimeout(interFrameTimeout(c.peripheral.Baudrate()))

	c.accum.push(b)
	msg, ok, err := c.accum.getMessage()
	if err != nil && c.telemetry != nil {
		c.telemetry.FrameDropped(err.Error())
	}
	if !ok {
		return
	}

	// Handed off to dispatchLoop rather than invoked here: a callback is
	// free to call another Core's Send (cmd/robussim's ring forwards this
	// way), and Send's own self-loop above feeds its bytes back through
	// this same ReceiveByte. In a ring topology that chain can lead right
	// back to this Core's Send while the call that got us here is still
	// on the stack; running the callback inline would then try to
	// re-acquire this Core's own still-held mu/txLock from the goroutine
	// that's holding them. Queuing the frame for a dedicated goroutine
	// breaks that recursion.
	c.dispatchq <- msg
}

// dispatchLoop invokes registered callbacks for every frame ReceiveByte
// hands it, one at a time, on its own goroutine — see the comment in
// ReceiveByte for why dispatch can't run inline with it.
func (c *Core) dispatchLoop() {
	for msg := range c.dispatchq {
		for _, m := range c.registry.dispatch(msg) {
			if m.Callback == nil {
				// A send-only module (e.g. a button with no local
				// reaction to its own frames) registers with a nil
				// callback; Broadcast/Type/Id traffic can legitimately
				// reach it.
				continue
			}
			m.Callback(msg.Clone())
		}
		if c.telemetry != nil {
			c.telemetry.FrameDispatched(msg)
		}
	}
}

// OnTimeout is the inter-frame timer's fire handler: it releases the
// TX-lock and flushes whatever partial frame the accumulator was holding
// (spec.md §4.6).
func (c *Core) OnTimeout() {
	c.txLock.Store(false)
	if c.telemetry != nil {
		c.telemetry.TxLockHeld(false)
	}
	c.accum.flush()
}
