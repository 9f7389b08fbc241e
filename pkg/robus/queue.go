package robus

import "sync"

// Queue is a single-slot producer/consumer handoff for moving a parsed
// Message out of ISR/read-loop context into a caller's loop (spec.md
// §4.3). A second Send before a Recv overwrites the first.
//
// original_source/src/collections/msg_channel.rs implements the same
// one-slot handoff but explicitly documents that it is "not interrupt or
// thread safe"; spec.md §4.3 requires the re-implementation to provide
// the missing guard, which here is a plain mutex around take-and-clear.
type Queue struct {
	mu   sync.Mutex
	slot *Message
}

// NewQueue returns an empty single-slot queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Send stores m in the slot, overwriting anything unread.
func (q *Queue) Send(m Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	cp := m
	q.slot = &cp
}

// Recv returns the slot's contents and clears it, or false if empty.
func (q *Queue) Recv() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.slot == nil {
		return Message{}, false
	}
	m := *q.slot
	q.slot = nil
	return m, true
}

// Sender is the producer half returned by MessageQueue.
type Sender struct{ q *Queue }

// Send forwards to the underlying Queue.
func (s Sender) Send(m Message) { s.q.Send(m) }

// Receiver is the consumer half returned by MessageQueue.
type Receiver struct{ q *Queue }

// Recv forwards to the underlying Queue.
func (r Receiver) Recv() (Message, bool) { return r.q.Recv() }

// MessageQueue returns a connected Sender/Receiver pair sharing one
// single-slot Queue, mirroring the source's message_queue() factory
// (spec.md §6) for use inside module callbacks.
func MessageQueue() (Sender, Receiver) {
	q := NewQueue()
	return Sender{q}, Receiver{q}
}
