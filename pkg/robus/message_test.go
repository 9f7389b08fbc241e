package robus

import (
	"bytes"
	"testing"
)

func TestMessageEncodeDecodeRoundTrip(t *testing.T) {
	// target=3, source=2, mode=Id, command=PublishState(33), one payload
	// byte of value 1 — exactly spec.md §8's "[48,0,32,0,33,1,1] -> 0x3211"
	// vector, reassembled as a Message instead of raw bytes.
	m := ID(3, PublishState, []byte{1})
	m.Header.Source = 2

	encoded, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := crc16([]byte{48, 0, 32, 0, 33, 1, 1})
	gotCRC := uint16(encoded[len(encoded)-2]) | uint16(encoded[len(encoded)-1])<<8
	if gotCRC != want {
		t.Fatalf("crc = 0x%04x, want 0x%04x", gotCRC, want)
	}
	if want != 0x3211 {
		t.Fatalf("sanity check failed: vector crc = 0x%04x, want 0x3211", want)
	}

	decoded, err := DecodeMessage(encoded, nil)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if decoded.Header != m.Header {
		t.Fatalf("header mismatch: got %+v, want %+v", decoded.Header, m.Header)
	}
	if !bytes.Equal(decoded.Data, m.Data) {
		t.Fatalf("data mismatch: got %v, want %v", decoded.Data, m.Data)
	}
}

func TestDecodeMessageRejectsCorruptCRC(t *testing.T) {
	m := Broadcast(Identify, []byte{9, 9})
	encoded, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	encoded[len(encoded)-1] ^= 0xFF

	if _, err := DecodeMessage(encoded, nil); err == nil {
		t.Fatal("expected CRC error")
	}
}

func TestDecodeMessageTrustsSuppliedCRC(t *testing.T) {
	m := Broadcast(Identify, []byte{1, 2, 3})
	encoded, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	end := len(encoded) - CRCSize
	trusted := crc16(encoded[:end])
	if _, err := DecodeMessage(encoded, &trusted); err != nil {
		t.Fatalf("DecodeMessage with trusted CRC: %v", err)
	}
}

func TestMessageCloneDoesNotAliasData(t *testing.T) {
	m := ID(1, Identify, []byte{1, 2, 3})
	clone := m.Clone()
	clone.Data[0] = 0xFF
	if m.Data[0] == 0xFF {
		t.Fatal("Clone aliased the original Data slice")
	}
}

func TestConstructorsSetTargetMode(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		mode TargetMode
	}{
		{"ID", ID(1, Identify, nil), TargetID},
		{"IDAck", IDAck(1, Identify, nil), TargetIDAck},
		{"TypeMsg", TypeMsg(uint16(Servo), Identify, nil), TargetType},
		{"Broadcast", Broadcast(Identify, nil), TargetBroadcast},
		{"Multicast", Multicast(1, Identify, nil), TargetMulticast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.msg.Header.TargetMode != tt.mode {
				t.Fatalf("got mode %v, want %v", tt.msg.Header.TargetMode, tt.mode)
			}
		})
	}
}
