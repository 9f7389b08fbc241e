package robus

import "testing"

func TestCRC16Vectors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{"payload byte 0", []byte{48, 0, 32, 0, 33, 1, 0}, 0x2230},
		{"payload byte 1", []byte{48, 0, 32, 0, 33, 1, 1}, 0x3211},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := crc16(tt.data)
			if got != tt.want {
				t.Fatalf("crc16(%v) = 0x%04x, want 0x%04x", tt.data, got, tt.want)
			}
		})
	}
}

func TestCRC16IncrementalMatchesBulk(t *testing.T) {
	data := []byte{48, 0, 32, 0, 33, 1, 1, 9, 8, 7, 200, 1}
	bulk := crc16(data)

	incremental := crcSeed
	for _, b := range data {
		incremental = foldCRC(incremental, b)
	}

	if bulk != incremental {
		t.Fatalf("incremental fold 0x%04x != bulk 0x%04x", incremental, bulk)
	}
}
