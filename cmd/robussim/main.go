// Command robussim runs the "ring of 4 nodes" scenario of spec.md §8 in a
// single process: each node forwards every Introduction frame it sees to
// its successor. Each node gets a small channel-backed robus.Peripheral
// modeled on pkg/physical/loopback's (SPEC_FULL.md §4.9), but wired
// point-to-point around the ring instead of as a single symmetric pair,
// since a ring link is one-directional per hop.
package main

import (
	"flag"
	"log"
	"sync"
	"time"

	"github.com/robus-bus/robus/pkg/physical"
	"github.com/robus-bus/robus/pkg/robus"
)

var ringSize = flag.Int("size", 4, "Number of nodes in the ring")

// ringLink is a one-directional, channel-backed robus.Peripheral: writes
// go out to the successor's inbound channel, reads come from the
// predecessor's outbound channel handed to us at construction.
type ringLink struct {
	out chan<- byte
	in  <-chan byte

	mu     sync.Mutex
	timer  *time.Timer
	onFire func()
}

func (r *ringLink) Baudrate() uint32 { return 57600 }

func (r *ringLink) ReadByte() (byte, error) {
	return <-r.in, nil
}

func (r *ringLink) WriteByte(b byte) error {
	r.out <- b
	return nil
}

func (r *ringLink) SetDriverEnable(bool)   {}
func (r *ringLink) SetReceiverEnable(bool) {}

func (r *ringLink) SetTimeoutHandler(fn func()) {
	r.mu.Lock()
	r.onFire = fn
	r.mu.Unlock()
}

func (r *ringLink) StartTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	if d <= 0 {
		return
	}
	r.timer = time.AfterFunc(d, func() {
		r.mu.Lock()
		fn := r.onFire
		r.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

type node struct {
	core    *robus.Core
	self    robus.ModuleHandle
	counter int
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	n := *ringSize
	if n < 2 {
		log.Fatalf("ring size must be at least 2, got %d", n)
	}

	// hop[i] is the channel carrying bytes from node i to node (i+1)%n.
	hops := make([]chan byte, n)
	for i := range hops {
		hops[i] = make(chan byte, robus.MaxMessageSize)
	}

	nodes := make([]*node, n)
	for i := 0; i < n; i++ {
		predecessor := (i - 1 + n) % n
		link := &ringLink{out: hops[i], in: hops[predecessor]}
		nodes[i] = &node{core: robus.NewCore(link)}
		go physical.Pump(link, nodes[i].core)
	}

	// Each Send feeds its own bytes back through ReceiveByte (core.go's
	// documented RS-485 self-echo), and a forwarding callback that calls
	// another node's Send chains that echo around the whole ring —
	// core.go's dispatch goroutine keeps that chain from deadlocking on a
	// node's own Send, but with no stopping condition it would still
	// forward forever, so the frame's payload carries a lap counter and
	// forwarding stops once it runs out.
	const laps = 3
	maxHops := byte(n * laps)

	for i, nd := range nodes {
		i := i
		nd := nd
		successor := nodes[(i+1)%n]
		handle, err := nd.core.CreateModule("ring", robus.Gate, func(msg robus.Message) {
			if msg.Header.Command != robus.Introduction {
				return
			}
			nd.counter++
			log.Printf("node %d: received Introduction #%d", i+1, nd.counter)
			hop := msg.Data[0]
			if hop >= maxHops {
				return
			}
			fwd := robus.Broadcast(robus.Introduction, []byte{hop + 1})
			if err := successor.core.Send(successor.self, &fwd); err != nil {
				log.Printf("node %d: forward failed: %v", i+1, err)
			}
		})
		if err != nil {
			log.Fatalf("node %d: create module: %v", i+1, err)
		}
		nd.self = handle
		nd.core.SetModuleID(handle, uint16(i+1))
	}

	seed := robus.Broadcast(robus.Introduction, []byte{0})
	if err := nodes[0].core.Send(nodes[0].self, &seed); err != nil {
		log.Fatalf("seed send failed: %v", err)
	}

	time.Sleep(500 * time.Millisecond)
	for i, nd := range nodes {
		log.Printf("node %d final count: %d", i+1, nd.counter)
	}
}
