// Package irq hosts the timer interrupt path: the trampoline that saves and
// restores the register file around a call into the task manager.
package irq

import (
	"picoos/kernel/driver/pic"
	"picoos/kernel/gate"
	"picoos/kernel/task"
	"sync/atomic"
)

// TimerVector is the vector IRQ 0 is delivered on after the PIC is remapped.
const TimerVector = gate.Vector(pic.MasterOffset)

var (
	// endInterruptFn is mocked by tests.
	endInterruptFn = pic.EndInterrupt

	// scheduler is the task manager consulted on every tick.
	scheduler = &task.Default

	ticks uint32
)

// InstallTimer points TimerVector of t at the timer trampoline.
func InstallTimer(t *gate.Table) {
	t.Set(TimerVector, gate.HandlerAddr(timerTrampoline))
}

// Ticks returns the number of timer interrupts serviced so far.
func Ticks() uint32 {
	return atomic.LoadUint32(&ticks)
}

// timerHandler is called by the timer trampoline with the stack pointer that
// addresses the register frame of the interrupted task. It returns the stack
// pointer of the frame to restore, which may belong to a different task.
//
// The PIC is acknowledged on every tick; without it IRQ 0 is never raised
// again.
//go:nosplit
func timerHandler(sp uintptr) uintptr {
	atomic.AddUint32(&ticks, 1)

	next := scheduler.Schedule(task.StackPointer(sp))
	endInterruptFn(uint8(TimerVector))

	return uintptr(next)
}
