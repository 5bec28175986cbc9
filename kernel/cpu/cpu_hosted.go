// +build !386

package cpu

// The functions in this file stand in for the privileged instructions when the
// kernel packages are built for a hosted target (e.g. for running tests). They
// model just enough machine state for callers to observe their effect.

var (
	interruptsEnabled bool
	lastIDTDescriptor uintptr
	ports             [1 << 16]uint8
)

// EnableInterrupts sets the modelled IF flag.
func EnableInterrupts() {
	interruptsEnabled = true
}

// DisableInterrupts clears the modelled IF flag.
func DisableInterrupts() {
	interruptsEnabled = false
}

// Halt blocks the calling goroutine forever.
func Halt() {
	interruptsEnabled = false
	select {}
}

// LoadIDT records descAddr as the address of the active table descriptor.
func LoadIDT(descAddr uintptr) {
	lastIDTDescriptor = descAddr
}

// PortWriteByte stores val in the modelled I/O port space.
func PortWriteByte(port uint16, val uint8) {
	ports[port] = val
}

// PortReadByte returns the last value written to port.
func PortReadByte(port uint16) uint8 {
	return ports[port]
}
