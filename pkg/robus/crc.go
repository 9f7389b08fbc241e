package robus

// crcSeed is the initial value of the CRC register before any byte has
// been folded in.
const crcSeed uint16 = 0xFFFF

// foldCRC folds a single byte into crc using the bus's bespoke 16-bit CRC.
// This is bit-exact with the existing fleet of nodes on the wire (spec.md
// §4.1) and is not a standard CRC-16 variant, so it is kept as a direct
// port rather than reached for from a generic CRC library.
func foldCRC(crc uint16, b byte) uint16 {
	x := byte(crc>>8) ^ b
	x ^= x >> 4
	return (crc << 8) ^ (uint16(x) << 12) ^ (uint16(x) << 5) ^ uint16(x)
}

// crc16 computes the bus CRC over an entire buffer, starting from crcSeed.
func crc16(data []byte) uint16 {
	crc := crcSeed
	for _, b := range data {
		crc = foldCRC(crc, b)
	}
	return crc
}
