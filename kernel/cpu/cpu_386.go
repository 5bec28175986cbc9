package cpu

// EnableInterrupts sets the IF flag so that maskable interrupts get delivered.
func EnableInterrupts()

// DisableInterrupts clears the IF flag.
func DisableInterrupts()

// Halt disables interrupts and stops instruction execution. Halt never
// returns.
func Halt()

// LoadIDT executes LIDT with the 6-byte table descriptor (limit followed by
// base address) stored at descAddr.
func LoadIDT(descAddr uintptr)

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8
