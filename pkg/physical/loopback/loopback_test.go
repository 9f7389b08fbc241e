package loopback

import (
	"testing"
	"time"
)

func TestPairDeliversBytesBothWays(t *testing.T) {
	a, b := Pair(57600)

	go func() {
		_ = a.WriteByte(0x42)
	}()
	got, err := b.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if got != 0x42 {
		t.Fatalf("got 0x%02x, want 0x42", got)
	}

	go func() {
		_ = b.WriteByte(0x99)
	}()
	got, err = a.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if got != 0x99 {
		t.Fatalf("got 0x%02x, want 0x99", got)
	}
}

func TestStartTimeoutFiresHandler(t *testing.T) {
	a, _ := Pair(57600)

	fired := make(chan struct{})
	a.SetTimeoutHandler(func() { close(fired) })
	a.StartTimeout(10 * time.Millisecond)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timeout handler never fired")
	}
}

func TestStartTimeoutZeroDisarms(t *testing.T) {
	a, _ := Pair(57600)

	fired := false
	a.SetTimeoutHandler(func() { fired = true })
	a.StartTimeout(10 * time.Millisecond)
	a.StartTimeout(0)

	time.Sleep(50 * time.Millisecond)
	if fired {
		t.Fatal("timeout fired despite being disarmed")
	}
}
