// Package kmain contains the kernel entrypoint that sets up interrupt routing
// and starts preemptive multitasking.
package kmain

import (
	"picoos/kernel"
	"picoos/kernel/cpu"
	"picoos/kernel/driver/pic"
	"picoos/kernel/driver/pit"
	"picoos/kernel/driver/vga"
	"picoos/kernel/gate"
	"picoos/kernel/irq"
	"picoos/kernel/kfmt"
	"picoos/kernel/task"
)

const (
	// timerHz is the preemption rate.
	timerHz = 100

	// taskStackSize is the size of the stack given to each boot task.
	taskStackSize = 4096

	// Only IRQ 0 (the timer) is unmasked.
	masterIRQMask = 0xfe
	slaveIRQMask  = 0xff
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

	// consoleFbAddr, idleFn and panicFn are mocked by tests.
	consoleFbAddr = vga.FramebufferAddr
	idleFn        = idle
	panicFn       = kfmt.Panic

	console vga.Console

	// bootTasks run once the first timer tick fires.
	bootTasks = [...]func(){
		spinnerTask0,
		spinnerTask1,
	}
	taskStacks [len(bootTasks)][taskStackSize]byte
)

// Kmain is invoked by the boot stage once the CPU runs in protected mode with
// a flat GDT (kernel code at selector 0x08) and a valid stack. It installs the
// IDT, programs the interrupt controller and the timer, registers the boot
// tasks and enables interrupts. The first timer tick switches away from the
// boot context for good.
//
// Kmain is not expected to return.
//
//go:noinline
func Kmain() {
	console.Init(vga.Width, vga.Height, consoleFbAddr)
	console.Clear()
	kfmt.SetOutputSink(&console)

	w := kfmt.PrefixWriter{Sink: &console, Prefix: []byte("[kmain] ")}

	gate.Init()
	irq.InstallTimer(&gate.Default)
	gate.Default.Load()
	kfmt.Fprintf(&w, "loaded IDT with %d vectors\n", gate.EntryCount)

	pic.Init()
	pic.SetMasks(masterIRQMask, slaveIRQMask)
	divisor := pit.SetFrequency(timerHz)
	kfmt.Fprintf(&w, "timer: %d Hz (divisor %d) on vector %d\n", timerHz, divisor, uint8(irq.TimerVector))

	for i, entry := range bootTasks {
		if _, err := task.Default.Spawn(taskStacks[i][:], gate.HandlerAddr(entry)); err != nil {
			panicFn(err)
			return
		}
	}
	kfmt.Fprintf(&w, "registered %d tasks\n", task.Default.Len())

	cpu.EnableInterrupts()
	idleFn()

	// Use panicFn instead of panic so that the compiler does not treat the
	// kernel panic handler as dead code.
	panicFn(errKmainReturned)
}

// idle keeps the boot context busy until the first timer tick replaces it.
func idle() {
	for {
	}
}
