// Package pit programs channel 0 of the 8253/8254 programmable interval timer
// which raises IRQ 0, the tick that drives preemption.
package pit

import "picoos/kernel/cpu"

const (
	// BaseFrequency is the input clock of the PIT in Hz.
	BaseFrequency = 1193182

	channel0Port = 0x40
	commandPort  = 0x43

	// channel 0, lobyte/hibyte access, mode 3 (square wave), binary.
	cmdChannel0SquareWave = 0x36
)

var (
	// portWriteByteFn is mocked by tests.
	portWriteByteFn = cpu.PortWriteByte
)

// Divisor returns the reload value that makes channel 0 fire at hz. Rates
// outside the range the 16-bit counter can express are clamped; a divisor of
// 0 programs the slowest rate (65536) and is never returned.
func Divisor(hz uint32) uint16 {
	if hz == 0 {
		return 0xffff
	}

	div := BaseFrequency / hz
	switch {
	case div < 1:
		return 1
	case div > 0xffff:
		return 0xffff
	default:
		return uint16(div)
	}
}

// SetFrequency programs channel 0 to fire hz times per second and returns the
// divisor that was loaded.
func SetFrequency(hz uint32) uint16 {
	div := Divisor(hz)

	portWriteByteFn(commandPort, cmdChannel0SquareWave)
	portWriteByteFn(channel0Port, uint8(div))
	portWriteByteFn(channel0Port, uint8(div>>8))

	return div
}
