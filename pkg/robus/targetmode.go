package robus

// TargetMode describes how a Header's Target field is interpreted.
//
// The numeric values are on-wire (spec.md §3) and must not be reordered.
type TargetMode uint8

const (
	// TargetID addresses a single module by its 12-bit bus id.
	TargetID TargetMode = iota
	// TargetIDAck addresses a single module by id and asks for an
	// acknowledgment frame in return. No ACK wire format exists yet;
	// dispatch treats it identically to TargetID.
	TargetIDAck
	// TargetType addresses every module of a given ModuleType.
	TargetType
	// TargetBroadcast addresses every local module.
	TargetBroadcast
	// TargetMulticast addresses a group of modules. No membership table
	// exists yet; dispatch matches nothing.
	TargetMulticast
)

func (m TargetMode) String() string {
	switch m {
	case TargetID:
		return "Id"
	case TargetIDAck:
		return "IdAck"
	case TargetType:
		return "Type"
	case TargetBroadcast:
		return "Broadcast"
	case TargetMulticast:
		return "Multicast"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is one of the declared TargetMode variants.
func (m TargetMode) Valid() bool {
	return m <= TargetMulticast
}
