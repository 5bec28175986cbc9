package gate

import (
	"picoos/kernel/cpu"
	"picoos/kernel/kfmt"
)

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the compiler.
	cpuHaltFn = cpu.Halt

	// cpuExceptions maps each named CPU exception to its trampoline.
	cpuExceptions = [...]struct {
		vector     Vector
		trampoline func()
	}{
		{DivideError, divErrorTrampoline},
		{InvalidOpcode, invalidOpcodeTrampoline},
		{DoubleFault, doubleFaultTrampoline},
		{GeneralProtectionFault, gpfTrampoline},
		{PageFault, pageFaultTrampoline},
	}
)

// Label returns the diagnostic printed when the exception identified by
// vector is raised.
func Label(vector uint32) string {
	switch vector {
	case uint32(DivideError):
		return "DIVISION ERROR!"
	case uint32(InvalidOpcode):
		return "INVALID OPCODE!"
	case uint32(DoubleFault):
		return "DOUBLE FAULT!"
	case uint32(GeneralProtectionFault):
		return "GENERAL PROTECTION FAULT!"
	case uint32(PageFault):
		return "PAGE FAULT!"
	default:
		return "EXCEPTION!"
	}
}

// exceptionHandler is called by every exception trampoline with the vector it
// pushed. The trampolines do not save any registers so there is nothing to
// resume: the handler reports the exception and halts the CPU.
//go:nosplit
func exceptionHandler(vector uint32) {
	kfmt.Printf("\n[gate] %s\n", Label(vector))
	cpuHaltFn()
}
