package gate

import (
	"encoding/binary"
	"picoos/kernel/cpu"
	"unsafe"
)

var (
	// loadIDTFn is mocked by tests.
	loadIDTFn = cpu.LoadIDT

	// Default is the table loaded by the kernel. The CPU reads it in place
	// so it must live at a fixed address for as long as it is active.
	Default Table
)

// Descriptor is the 6-byte operand of the LIDT instruction: the table size in
// bytes minus one followed by the 32-bit linear base address.
type Descriptor [6]byte

// Limit returns the encoded size-minus-one of the table.
func (d *Descriptor) Limit() uint16 {
	return binary.LittleEndian.Uint16(d[0:2])
}

// Base returns the encoded base address of the table.
func (d *Descriptor) Base() uint32 {
	return binary.LittleEndian.Uint32(d[2:6])
}

// Table is the interrupt descriptor table. Entries are kept in their encoded
// hardware form so the array can be handed to the CPU as-is.
//
// A Table is written during setup and thereafter read by the CPU. Writers are
// not synchronised: callers that modify a loaded table must do so with
// interrupts disabled.
type Table struct {
	entries  [EntryCount]uint64
	fallback uint32

	// desc is rebuilt by every Load call. It is part of the table so that
	// its address stays valid while LIDT reads it.
	desc Descriptor
}

// BuildDefault points every vector at fallback using a present, ring-0,
// 32-bit interrupt gate on the kernel code segment. After BuildDefault no slot
// of the table is left undefined.
func (t *Table) BuildDefault(fallback uintptr) {
	t.fallback = uint32(fallback)

	entry := EncodeGate(Gate{
		Handler:  t.fallback,
		Selector: KernelCodeSelector,
		Type:     InterruptGate32,
		DPL:      0,
		Present:  true,
	})

	for i := range t.entries {
		t.entries[i] = entry
	}
}

// Set points vector v at handler. The selector and flags of the slot are
// preserved.
func (t *Table) Set(v Vector, handler uintptr) {
	t.entries[v] = setHandler(t.entries[v], uint32(handler))
}

// SetGate replaces the full descriptor for vector v.
func (t *Table) SetGate(v Vector, g Gate) {
	t.entries[v] = EncodeGate(g)
}

// Gate returns the decoded descriptor for vector v.
func (t *Table) Gate(v Vector) Gate {
	return DecodeGate(t.entries[v])
}

// Fallback returns the handler address that BuildDefault installed.
func (t *Table) Fallback() uint32 {
	return t.fallback
}

// RegisterCPUExceptions installs the dedicated trampolines for the CPU
// exceptions that the kernel reports by name.
func (t *Table) RegisterCPUExceptions() {
	for _, exc := range cpuExceptions {
		t.Set(exc.vector, HandlerAddr(exc.trampoline))
	}
}

// Load builds the table descriptor and hands it to the CPU. From that point on
// every interrupt and exception is routed through t. Reloading is allowed and
// takes effect immediately.
func (t *Table) Load() {
	binary.LittleEndian.PutUint16(t.desc[0:2], uint16(EntryCount*entrySize-1))
	binary.LittleEndian.PutUint32(t.desc[2:6], uint32(uintptr(unsafe.Pointer(&t.entries[0]))))

	loadIDTFn(uintptr(unsafe.Pointer(&t.desc)))
}

// Init populates Default with the generic fallback and the CPU exception
// trampolines. Callers install any additional handlers and then call
// Default.Load.
func Init() {
	Default.BuildDefault(GenericHandler())
	Default.RegisterCPUExceptions()
}

// GenericHandler returns the entry address of the fallback trampoline.
func GenericHandler() uintptr {
	return HandlerAddr(genericTrampoline)
}

// HandlerAddr returns the entry address of fn, suitable for Table.Set.
func HandlerAddr(fn func()) uintptr {
	if fn == nil {
		return 0
	}

	return **(**uintptr)(unsafe.Pointer(&fn))
}
