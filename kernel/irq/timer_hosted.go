// +build !386

package irq

import "unsafe"

var (
	hostStack [1024]uint32

	// hostCPU is the machine that timerTrampoline runs on in hosted builds.
	hostCPU = softCPU{
		CS:     0x08,
		EFlags: 0x202,
		ESP:    uintptr(unsafe.Pointer(&hostStack[len(hostStack)-1])) + 4,
	}
)

// timerTrampoline delivers a timer interrupt to hostCPU.
func timerTrampoline() {
	softInterrupt(&hostCPU, timerHandler)
}
