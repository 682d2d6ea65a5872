package types

// ResourceKind classifies an exclusively-claimable hardware resource.
type ResourceKind string

const (
	ResourcePin        ResourceKind = "pin"
	ResourceSerialPort ResourceKind = "serial-port"
	ResourceBusDevice  ResourceKind = "bus-device"
)

// ResourceClaim is an exclusive reservation of one physical resource
// identifier by one owner. Identifier is kind-specific: a pin number, a
// device path, or a "(bus,device)" pair rendered as a string. Owner is
// the human-readable label of the peripheral or protocol entry that
// requested it.
type ResourceClaim struct {
	Kind       ResourceKind
	Identifier string
	Owner      string
}

// Handle is an opaque, already-initialized driver object. The core never
// initializes or releases handles; their lifecycle belongs to the
// peripheral manager.
type Handle interface {
	// Name identifies the driver, e.g. "gpio" or "modbus".
	Name() string
}

// HandleSet maps a category name to its initialized driver. Handles are
// valid for the full duration from case execution through teardown; cases
// must not release or reassign them.
type HandleSet map[string]Handle
