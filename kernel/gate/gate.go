// Package gate builds the interrupt descriptor table (IDT) and provides the
// CPU exception trampolines together with the fatal exception reporter.
package gate

// Vector identifies an interrupt, exception or trap slot in the IDT.
type Vector uint8

const (
	// DivideError occurs when dividing any number by 0 using the DIV or
	// IDIV instruction or when the quotient does not fit the destination.
	DivideError = Vector(0x00)

	// InvalidOpcode occurs when the CPU attempts to execute an invalid or
	// undefined instruction opcode.
	InvalidOpcode = Vector(0x06)

	// DoubleFault occurs when an exception is raised while the CPU is
	// trying to invoke the handler of a prior exception.
	DoubleFault = Vector(0x08)

	// GeneralProtectionFault occurs on segment limit, privilege or
	// descriptor violations.
	GeneralProtectionFault = Vector(0x0d)

	// PageFault occurs when a page directory or page table entry is not
	// present or when a privilege and/or RW protection check fails.
	PageFault = Vector(0x0e)
)

// GenericVector is the value pushed by the fallback trampoline installed on
// every vector without a dedicated handler. It is wider than Vector so that it
// never collides with a CPU exception number when compared by the reporter.
const GenericVector = uint32(0xff)

// EntryCount is the number of descriptors in the IDT.
const EntryCount = 256

// entrySize is the size in bytes of a single hardware gate descriptor.
const entrySize = 8

// GateType selects the kind of gate described by a descriptor.
type GateType uint8

const (
	// TaskGate32 transfers control through a TSS.
	TaskGate32 = GateType(0x5)

	// InterruptGate16 is a 16-bit interrupt gate.
	InterruptGate16 = GateType(0x6)

	// TrapGate16 is a 16-bit trap gate.
	TrapGate16 = GateType(0x7)

	// InterruptGate32 clears IF on entry so that the handler runs with
	// maskable interrupts disabled.
	InterruptGate32 = GateType(0xe)

	// TrapGate32 leaves IF untouched on entry.
	TrapGate32 = GateType(0xf)
)

// Flag byte layout: type:4 | zero:1 | dpl:2 | present:1.
const (
	flagTypeMask  = 0x0f
	flagDPLShift  = 5
	flagDPLMask   = 0x3 << flagDPLShift
	flagPresent   = 1 << 7
	maxPrivilege  = 3
	selectorRPL   = 0x3
	selectorTI    = 1 << 2
	selectorShift = 3
)

// EncodeFlags packs a gate type, descriptor privilege level and presence bit
// into the descriptor's flag byte. dpl values above 3 are truncated.
func EncodeFlags(typ GateType, dpl uint8, present bool) uint8 {
	flags := uint8(typ)&flagTypeMask | (dpl&maxPrivilege)<<flagDPLShift
	if present {
		flags |= flagPresent
	}

	return flags
}

// DecodeFlags is the inverse of EncodeFlags.
func DecodeFlags(flags uint8) (typ GateType, dpl uint8, present bool) {
	return GateType(flags & flagTypeMask), (flags & flagDPLMask) >> flagDPLShift, flags&flagPresent != 0
}

// Selector is a segment selector: bits 0-1 hold the requested privilege level,
// bit 2 selects the LDT instead of the GDT and bits 3-15 hold the descriptor
// index.
type Selector uint16

// KernelCodeSelector refers to the ring-0 code segment stored at GDT index 1
// by the boot stage.
var KernelCodeSelector = NewSelector(1, false, 0)

// NewSelector assembles a segment selector.
func NewSelector(index uint16, ldt bool, rpl uint8) Selector {
	sel := Selector(index<<selectorShift) | Selector(rpl&selectorRPL)
	if ldt {
		sel |= selectorTI
	}

	return sel
}

// Index returns the descriptor table index referenced by the selector.
func (s Selector) Index() uint16 { return uint16(s) >> selectorShift }

// LDT returns true if the selector refers to the local descriptor table.
func (s Selector) LDT() bool { return s&selectorTI != 0 }

// RPL returns the requested privilege level.
func (s Selector) RPL() uint8 { return uint8(s & selectorRPL) }

// Gate is the decoded form of a 32-bit IDT descriptor.
type Gate struct {
	// Handler is the linear address of the entry point.
	Handler uint32

	// Selector is the code segment the CPU switches to.
	Selector Selector

	Type GateType

	// DPL is the lowest ring allowed to raise the vector with INT n.
	DPL uint8

	Present bool
}

// EncodeGate packs g into the 8-byte hardware descriptor format:
//
//   bits  0-15  handler address, low half
//   bits 16-31  code segment selector
//   bits 32-39  reserved, always zero
//   bits 40-47  flags (see EncodeFlags)
//   bits 48-63  handler address, high half
//
// Stored little-endian, the returned value has the exact in-memory layout that
// the CPU expects.
func EncodeGate(g Gate) uint64 {
	return uint64(g.Handler&0xffff) |
		uint64(g.Selector)<<16 |
		uint64(EncodeFlags(g.Type, g.DPL, g.Present))<<40 |
		uint64(g.Handler>>16)<<48
}

// DecodeGate unpacks a hardware descriptor. The reserved byte and the zero bit
// of the flags are ignored.
func DecodeGate(entry uint64) Gate {
	typ, dpl, present := DecodeFlags(uint8(entry >> 40))

	return Gate{
		Handler:  uint32(entry&0xffff) | uint32(entry>>48)<<16,
		Selector: Selector(entry >> 16),
		Type:     typ,
		DPL:      dpl,
		Present:  present,
	}
}

// setHandler replaces the handler address of an encoded descriptor, leaving
// the selector and flags untouched.
func setHandler(entry uint64, handler uint32) uint64 {
	const handlerMask = 0xffff<<48 | 0xffff
	return entry&^handlerMask | uint64(handler&0xffff) | uint64(handler>>16)<<48
}
