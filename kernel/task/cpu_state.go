package task

import (
	"picoos/kernel/gate"
	"unsafe"
)

// StackPointer is the saved stack pointer of a preempted task. It addresses a
// CPUState frame on that task's own stack.
type StackPointer uintptr

// CPUState is the register frame that the timer trampoline leaves on the stack
// of a preempted task. The trampoline pushes EBP, EDI, ESI, EDX, ECX, EBX and
// EAX in that order, so EAX ends up at the lowest address; the CPU has already
// pushed EFlags, CS and EIP before the trampoline runs. Restoring pops the
// general purpose registers in reverse and returns with IRETL.
type CPUState struct {
	EAX uint32
	EBX uint32
	ECX uint32
	EDX uint32
	ESI uint32
	EDI uint32
	EBP uint32

	// The return frame used by IRETL
	EIP    uint32
	CS     uint32
	EFlags uint32
}

const (
	// FrameSize is the size in bytes of a CPUState frame.
	FrameSize = unsafe.Sizeof(CPUState{})

	// GPRCount is the number of general purpose registers saved by the
	// timer trampoline.
	GPRCount = 7

	// flagsReserved is bit 1 of EFLAGS which always reads as 1.
	flagsReserved = 1 << 1

	// flagsIF enables maskable interrupts.
	flagsIF = 1 << 9

	// initialFlags is the EFLAGS value a task starts with: interrupts enabled
	// so that the timer can preempt it.
	initialFlags = flagsReserved | flagsIF
)

// Frame returns the register frame addressed by sp.
func (sp StackPointer) Frame() *CPUState {
	return (*CPUState)(unsafe.Pointer(uintptr(sp)))
}

// prepareStack lays out an initial CPUState at the top of stack so that the
// first IRETL into it jumps to entry with zeroed registers. It returns the
// stack pointer addressing the frame, or 0 if the stack is too small.
func prepareStack(stack []byte, entry uintptr) StackPointer {
	if uintptr(len(stack)) < FrameSize {
		return 0
	}

	top := uintptr(unsafe.Pointer(&stack[0])) + uintptr(len(stack))
	top &^= 3

	sp := StackPointer(top - FrameSize)
	if uintptr(sp) < uintptr(unsafe.Pointer(&stack[0])) {
		return 0
	}

	*sp.Frame() = CPUState{
		EIP:    uint32(entry),
		CS:     uint32(gate.KernelCodeSelector),
		EFlags: initialFlags,
	}

	return sp
}
