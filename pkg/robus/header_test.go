package robus

import "testing"

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := Header{
		Protocol:   ProtocolVersion,
		Target:     0x123,
		TargetMode: TargetID,
		Source:     0x0AB,
		Command:    Identify,
		DataSize:   3,
	}

	encoded, err := h.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := DecodeHeader(encoded[:])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestHeaderEncodeRejectsOutOfRange(t *testing.T) {
	h := Header{Target: MaxID + 1, Command: Identify}
	if _, err := h.Encode(); err == nil {
		t.Fatal("expected error for out-of-range target")
	}
}

func TestDecodeHeaderRejectsWrongLength(t *testing.T) {
	if _, err := DecodeHeader([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short buffer")
	}
}

func TestDecodeHeaderRejectsBadCommand(t *testing.T) {
	b := []byte{0, 0, 0, 0, 0xFF, 0}
	if _, err := DecodeHeader(b); err == nil {
		t.Fatal("expected error for invalid command byte")
	}
}

func TestDecodeHeaderRejectsBadTargetMode(t *testing.T) {
	// byte 2's low nibble is target_mode; 0xF is out of TargetMode's valid
	// range (0..TargetMulticast).
	b := []byte{0, 0, 0x0F, 0, byte(Identify), 0}
	if _, err := DecodeHeader(b); err == nil {
		t.Fatal("expected error for invalid target_mode")
	}
}
