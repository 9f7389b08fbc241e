package robus

// Message is a complete framed unit: a Header plus its payload. The CRC is
// never stored on Message itself — it is computed on demand by Encode and
// verified on demand by Decode, since it is purely a function of the other
// two fields.
type Message struct {
	Header Header
	Data   []byte
}

func newMessage(target uint16, mode TargetMode, cmd Command, data []byte) Message {
	return Message{
		Header: Header{
			Protocol:   ProtocolVersion,
			Target:     target,
			TargetMode: mode,
			Source:     0,
			Command:    cmd,
			DataSize:   len(data),
		},
		Data: data,
	}
}

// ID returns a Message addressed to a single module by id.
func ID(target uint16, cmd Command, data []byte) Message {
	return newMessage(target, TargetID, cmd, data)
}

// IDAck returns a Message addressed to a single module by id, requesting
// an acknowledgment. No ACK wire format is implemented (spec.md §9); the
// frame itself is otherwise identical to ID.
func IDAck(target uint16, cmd Command, data []byte) Message {
	return newMessage(target, TargetIDAck, cmd, data)
}

// TypeMsg returns a Message addressed to every module of a given type.
// target is the numeric encoding of that ModuleType.
func TypeMsg(target uint16, cmd Command, data []byte) Message {
	return newMessage(target, TargetType, cmd, data)
}

// Broadcast returns a Message addressed to every local module.
func Broadcast(cmd Command, data []byte) Message {
	return newMessage(BroadcastTarget, TargetBroadcast, cmd, data)
}

// Multicast returns a Message addressed to a (currently unimplemented)
// group of modules.
func Multicast(target uint16, cmd Command, data []byte) Message {
	return newMessage(target, TargetMulticast, cmd, data)
}

// Encode serializes m as header || payload || little-endian CRC16.
func (m Message) Encode() ([]byte, error) {
	m.Header.DataSize = len(m.Data)
	headerBytes, err := m.Header.Encode()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, HeaderSize+len(m.Data)+CRCSize)
	out = append(out, headerBytes[:]...)
	out = append(out, m.Data...)

	crc := crc16(out)
	out = append(out, byte(crc), byte(crc>>8))
	return out, nil
}

// DecodeMessage splits b into header and payload and validates its CRC.
// If trustedCRC is non-nil, it is compared against the value instead of
// recomputing it over b — the accumulator supplies this to avoid a second
// full pass over the buffer it already folded incrementally (spec.md
// §4.1/§4.2).
func DecodeMessage(b []byte, trustedCRC *uint16) (Message, error) {
	if len(b) < HeaderSize+CRCSize {
		return Message{}, newFramingError(ErrInvalidHeader, "frame too short: %d bytes", len(b))
	}

	header, err := DecodeHeader(b[:HeaderSize])
	if err != nil {
		return Message{}, err
	}

	end := HeaderSize + header.DataSize
	if len(b) < end+CRCSize {
		return Message{}, newFramingError(ErrInvalidHeader, "frame too short for data_size %d", header.DataSize)
	}

	data := append([]byte(nil), b[HeaderSize:end]...)

	var computed uint16
	if trustedCRC != nil {
		computed = *trustedCRC
	} else {
		computed = crc16(b[:end])
	}

	wireCRC := uint16(b[end]) | uint16(b[end+1])<<8
	if computed != wireCRC {
		return Message{}, newFramingError(ErrBadCRC, "computed 0x%04x, wire 0x%04x", computed, wireCRC)
	}

	return Message{Header: header, Data: data}, nil
}

// Clone returns a deep copy of m, suitable for handing to multiple
// dispatch targets without aliasing the payload slice (spec.md §3
// lifecycle: "cloned into each dispatch target").
func (m Message) Clone() Message {
	data := append([]byte(nil), m.Data...)
	return Message{Header: m.Header, Data: data}
}
