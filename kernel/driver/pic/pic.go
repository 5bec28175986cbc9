// Package pic drives the pair of cascaded 8259 programmable interrupt
// controllers.
package pic

import "picoos/kernel/cpu"

const (
	masterCmd  = 0x20
	masterData = 0x21
	slaveCmd   = 0xa0
	slaveData  = 0xa1

	cmdEOI = 0x20

	icw1ICW4 = 0x01
	icw1Init = 0x10
	icw4x86  = 0x01

	// slaveIRQ is the master input line the slave is cascaded on.
	slaveIRQ = 2

	// waitPort is an unused port; writing to it gives the controller time
	// to settle between initialization words.
	waitPort = 0x80
)

const (
	// MasterOffset is the vector that IRQ 0 is remapped to.
	MasterOffset = 0x20

	// SlaveOffset is the vector that IRQ 8 is remapped to.
	SlaveOffset = 0x28

	linesPerPIC = 8
)

var (
	// portWriteByteFn and portReadByteFn are mocked by tests.
	portWriteByteFn = cpu.PortWriteByte
	portReadByteFn  = cpu.PortReadByte
)

// Init remaps the master and slave controllers so that IRQs 0-15 are delivered
// on vectors MasterOffset to SlaveOffset+7, away from the CPU exception range.
// The interrupt masks in effect before the call are restored.
func Init() {
	masterMask := portReadByteFn(masterData)
	slaveMask := portReadByteFn(slaveData)

	// ICW1: start the initialization sequence, ICW4 follows.
	write(masterCmd, icw1Init|icw1ICW4)
	write(slaveCmd, icw1Init|icw1ICW4)

	// ICW2: vector offsets.
	write(masterData, MasterOffset)
	write(slaveData, SlaveOffset)

	// ICW3: master has a slave on IRQ2; slave cascade identity is 2.
	write(masterData, 1<<slaveIRQ)
	write(slaveData, slaveIRQ)

	// ICW4: 8086 mode.
	write(masterData, icw4x86)
	write(slaveData, icw4x86)

	portWriteByteFn(masterData, masterMask)
	portWriteByteFn(slaveData, slaveMask)
}

// SetMasks replaces the interrupt masks of both controllers. A set bit
// disables the matching IRQ line.
func SetMasks(master, slave uint8) {
	portWriteByteFn(masterData, master)
	portWriteByteFn(slaveData, slave)
}

// EndInterrupt acknowledges the interrupt delivered on vector. It must be
// called exactly once for each serviced IRQ before returning from the
// interrupt; otherwise the controller holds back every interrupt of equal or
// lower priority. Vectors that do not belong to either controller are ignored.
//go:nosplit
func EndInterrupt(vector uint8) {
	switch {
	case vector >= SlaveOffset && vector < SlaveOffset+linesPerPIC:
		portWriteByteFn(slaveCmd, cmdEOI)
		portWriteByteFn(masterCmd, cmdEOI)
	case vector >= MasterOffset && vector < MasterOffset+linesPerPIC:
		portWriteByteFn(masterCmd, cmdEOI)
	}
}

func write(port uint16, val uint8) {
	portWriteByteFn(port, val)
	portWriteByteFn(waitPort, 0)
}
