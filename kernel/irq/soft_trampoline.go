package irq

import "unsafe"

// softCPU models the part of the CPU state that an interrupt through the
// timer trampoline reads and writes. ESP addresses real memory.
type softCPU struct {
	EAX, EBX, ECX, EDX, ESI, EDI, EBP uint32

	EIP, CS, EFlags uint32

	ESP uintptr
}

func (c *softCPU) push(v uint32) {
	c.ESP -= 4
	*(*uint32)(unsafe.Pointer(c.ESP)) = v
}

func (c *softCPU) pop() uint32 {
	v := *(*uint32)(unsafe.Pointer(c.ESP))
	c.ESP += 4
	return v
}

// softInterrupt replays the stack traffic of a timer interrupt as performed by
// the CPU and timer_386.s: the CPU pushes the return frame and the trampoline
// saves the registers, hands the stack pointer to handler and switches to the
// stack pointer it returns. It then restores the registers and executes
// IRETL.
func softInterrupt(c *softCPU, handler func(uintptr) uintptr) {
	// interrupt entry
	c.push(c.EFlags)
	c.push(c.CS)
	c.push(c.EIP)

	c.push(c.EBP)
	c.push(c.EDI)
	c.push(c.ESI)
	c.push(c.EDX)
	c.push(c.ECX)
	c.push(c.EBX)
	c.push(c.EAX)

	// The argument slot and return address live below the frame and are
	// discarded when ESP is replaced.
	arg := c.ESP
	c.push(uint32(arg))
	c.push(0)
	c.ESP = handler(arg)

	c.EAX = c.pop()
	c.EBX = c.pop()
	c.ECX = c.pop()
	c.EDX = c.pop()
	c.ESI = c.pop()
	c.EDI = c.pop()
	c.EBP = c.pop()

	// IRETL
	c.EIP = c.pop()
	c.CS = c.pop()
	c.EFlags = c.pop()
}
