package robus

// Command tags the purpose of a Message's payload.
//
// Values 0..6 are reserved for the internal protocol commands
// (id/alias/type/status negotiation handled below the application layer).
// Application-visible commands start at ProtocolCommandOffset, matching
// the source protocol's Command::Identify = ProtocolCommand::_OffsetNumber.
// Reordering any of these breaks wire compatibility with existing nodes.
type Command uint8

// Internal protocol commands, reserved below ProtocolCommandOffset.
const (
	ProtocolGetID Command = iota
	ProtocolWriteID
	ProtocolWriteAlias
	ProtocolGetModuleType
	ProtocolGetStatus
	ProtocolGetFirmRevision
	ProtocolGetComRevision
)

// ProtocolCommandOffset is where application-level commands begin.
const ProtocolCommandOffset = 30

// Application commands.
const (
	// Identify asks a module to identify itself.
	Identify Command = ProtocolCommandOffset + iota
	// Introduction carries a module's alias and type back to the gate.
	Introduction
	// GetState asks a sensor module to publish its data.
	GetState
	// PublishState carries a module's published data.
	PublishState

	// LedColor carries an RGB triple (R, G, B) for an RgbLed module.
	LedColor

	// ServoPosition carries a servo's position in degrees.
	ServoPosition
	// ServoSpeed carries a servo's speed in degrees/second.
	ServoSpeed
	// WheelMode toggles a servo's continuous-rotation mode (bool).
	WheelMode
	// SetCompliant toggles a servo's torque-off compliant mode (bool).
	SetCompliant

	// EnableRelay toggles a Relay module (bool).
	EnableRelay

	// StepperPosition carries a stepper's position in steps.
	StepperPosition
	// StepperSpeed carries a stepper's speed in steps/second.
	StepperSpeed
	// StepperHomePosition asks a stepper to return to its home position.
	StepperHomePosition
	// StepperStop asks a stepper to stop.
	StepperStop

	// LedPower carries a brightness value.
	LedPower
	// SetAsservStep carries PID gains (P, I, D, each 2 bytes) plus a
	// 1-byte target for a closed-loop control step.
	SetAsservStep
	// GetAsservStep asks for the current PID gains and target.
	GetAsservStep
	// EncoderHome asks an encoder to zero itself.
	EncoderHome
	// PowerRatio carries a power ratio value.
	PowerRatio

	commandLimit
)

func (c Command) String() string {
	switch c {
	case ProtocolGetID:
		return "GetID"
	case ProtocolWriteID:
		return "WriteID"
	case ProtocolWriteAlias:
		return "WriteAlias"
	case ProtocolGetModuleType:
		return "GetModuleType"
	case ProtocolGetStatus:
		return "GetStatus"
	case ProtocolGetFirmRevision:
		return "GetFirmRevision"
	case ProtocolGetComRevision:
		return "GetComRevision"
	case Identify:
		return "Identify"
	case Introduction:
		return "Introduction"
	case GetState:
		return "GetState"
	case PublishState:
		return "PublishState"
	case LedColor:
		return "LedColor"
	case ServoPosition:
		return "ServoPosition"
	case ServoSpeed:
		return "ServoSpeed"
	case WheelMode:
		return "WheelMode"
	case SetCompliant:
		return "SetCompliant"
	case EnableRelay:
		return "EnableRelay"
	case StepperPosition:
		return "StepperPosition"
	case StepperSpeed:
		return "StepperSpeed"
	case StepperHomePosition:
		return "StepperHomePosition"
	case StepperStop:
		return "StepperStop"
	case LedPower:
		return "LedPower"
	case SetAsservStep:
		return "SetAsservStep"
	case GetAsservStep:
		return "GetAsservStep"
	case EncoderHome:
		return "EncoderHome"
	case PowerRatio:
		return "PowerRatio"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the declared Command variants.
func (c Command) Valid() bool {
	return c <= ProtocolGetComRevision || (c >= Identify && c < commandLimit)
}
