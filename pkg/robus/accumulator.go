package robus

import "log"

// accumulator is the receive byte-accumulator of spec.md §4.2: it appends
// incoming bytes, discovers the frame length from the header as soon as
// it is available, and folds the CRC incrementally so get_message never
// has to re-scan the buffer.
//
// Grounded on original_source/src/recv_buf.rs's push/get_message/flush
// shape, generalized to fold the CRC as bytes arrive instead of
// recomputing it over the whole buffer on completion.
type accumulator struct {
	buf    [MaxMessageSize]byte
	i      int
	toRead int
	crc    uint16
}

func newAccumulator() *accumulator {
	a := &accumulator{}
	a.flush()
	return a
}

// flush resets the accumulator to accept a fresh frame. It is idempotent:
// calling it repeatedly always yields the same empty state.
func (a *accumulator) flush() {
	a.i = 0
	a.toRead = HeaderSize + CRCSize
	a.crc = crcSeed
}

// push appends one received byte, discovering the frame length once the
// header is complete and folding the CRC over everything except the
// trailing two CRC bytes.
func (a *accumulator) push(b byte) {
	if a.i >= len(a.buf) {
		// A corrupt stream with no valid header long enough to ever
		// complete; resynchronize rather than overrun the buffer.
		a.flush()
	}

	a.buf[a.i] = b
	a.i++

	if a.i == HeaderSize {
		header, err := DecodeHeader(a.buf[:HeaderSize])
		if err != nil {
			log.Printf("robus: accumulator flushing on invalid header: %v", err)
			a.flush()
			return
		}
		a.toRead = HeaderSize + header.DataSize + CRCSize
	}

	if a.i <= a.toRead-CRCSize {
		a.crc = foldCRC(a.crc, b)
	}
}

// getMessage returns the accumulated frame once push has delivered
// exactly toRead bytes. A CRC mismatch or decode error is dropped per
// spec.md §7 (only a warning is logged, never propagated to callbacks);
// either way the accumulator is flushed so the next frame starts clean.
//
// The three-way return distinguishes "not enough bytes yet" (ok=false,
// err=nil) from "a full frame arrived but failed validation" (ok=false,
// err!=nil), so callers can tell an observability collaborator about the
// latter without the accumulator itself depending on one.
func (a *accumulator) getMessage() (msg Message, ok bool, err error) {
	if a.i != a.toRead {
		return Message{}, false, nil
	}

	crc := a.crc
	msg, err = DecodeMessage(a.buf[:a.i], &crc)
	a.flush()
	if err != nil {
		log.Printf("robus: dropping frame: %v", err)
		return Message{}, false, err
	}
	return msg, true, nil
}
