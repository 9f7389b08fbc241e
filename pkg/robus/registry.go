package robus

// MaxAliasLength is the largest alias a Module may carry (spec.md §3).
const MaxAliasLength = 15

// ModuleHandle is a stable, opaque index into a Registry, handed back by
// CreateModule. Insertion order defines the handle (spec.md §3).
type ModuleHandle int

// Module is a local logical endpoint: a sensor or actuator reachable on
// the bus once it has an id.
type Module struct {
	Alias    string
	Type     ModuleType
	ID       uint16
	Callback func(Message)
}

// registry is the arena of local modules owned by a Core. Using a plain
// slice plus an opaque index (rather than the source's Rc<RefCell<...>>
// graph, spec.md §9) avoids any self-referential ownership problem.
type registry struct {
	modules []Module
}

func newRegistry() *registry {
	return &registry{}
}

// create appends a new module, validating its alias length per spec.md
// §4.4.
func (r *registry) create(alias string, modType ModuleType, cb func(Message)) (ModuleHandle, error) {
	if len(alias) > MaxAliasLength {
		return 0, newFramingError(ErrAliasTooLong, "alias %q is %d bytes, max %d", alias, len(alias), MaxAliasLength)
	}
	r.modules = append(r.modules, Module{
		Alias:    alias,
		Type:     modType,
		Callback: cb,
	})
	return ModuleHandle(len(r.modules) - 1), nil
}

func (r *registry) setID(h ModuleHandle, id uint16) {
	r.modules[h].ID = id
}

func (r *registry) get(h ModuleHandle) Module {
	return r.modules[h]
}

// dispatch returns every module targeted by msg, per spec.md §4.4:
//
//   - Broadcast: every module.
//   - Id / IdAck: every module whose id matches the target, plus every
//     Sniffer-typed module regardless of id.
//   - Type: every module whose ModuleType matches the numeric target.
//   - Multicast: no membership table exists; nothing matches.
func (r *registry) dispatch(msg Message) []Module {
	var matched []Module
	switch msg.Header.TargetMode {
	case TargetBroadcast:
		matched = append(matched, r.modules...)
	case TargetID, TargetIDAck:
		for _, m := range r.modules {
			if m.ID == msg.Header.Target || m.Type == Sniffer {
				matched = append(matched, m)
			}
		}
	case TargetType:
		for _, m := range r.modules {
			if uint16(m.Type) == msg.Header.Target {
				matched = append(matched, m)
			}
		}
	case TargetMulticast:
		// No group membership table in this implementation (spec.md §9).
	}
	return matched
}
