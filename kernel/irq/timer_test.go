package irq

import (
	"picoos/kernel/driver/pic"
	"picoos/kernel/gate"
	"picoos/kernel/task"
	"runtime"
	"testing"
	"unsafe"
)

// mockEOI replaces the PIC acknowledgement with a recorder and returns the
// list of acknowledged vectors.
func mockEOI() *[]uint8 {
	var vectors []uint8
	endInterruptFn = func(vector uint8) {
		vectors = append(vectors, vector)
	}

	return &vectors
}

func restore() {
	endInterruptFn = pic.EndInterrupt
	scheduler = &task.Default
	ticks = 0
}

func newStack(words int) (*softCPU, []uint32) {
	stack := make([]uint32, words)
	cpu := &softCPU{
		CS:     0x08,
		EFlags: 0x202,
		ESP:    uintptr(unsafe.Pointer(&stack[0])) + uintptr(4*words),
	}

	return cpu, stack
}

func TestTimerVector(t *testing.T) {
	if TimerVector != 32 {
		t.Fatalf("expected the timer to be delivered on vector 32; got %d", TimerVector)
	}
}

func TestInstallTimer(t *testing.T) {
	var tbl gate.Table
	tbl.BuildDefault(0x1000)

	InstallTimer(&tbl)

	if got, exp := tbl.Gate(TimerVector).Handler, uint32(gate.HandlerAddr(timerTrampoline)); got != exp {
		t.Fatalf("expected timer vector handler 0x%x; got 0x%x", exp, got)
	}

	if got := tbl.Gate(TimerVector + 1).Handler; got != 0x1000 {
		t.Fatalf("expected vector 33 to keep the fallback handler; got 0x%x", got)
	}
}

func TestTimerHandlerSignalsEndOfInterrupt(t *testing.T) {
	defer restore()

	var mgr task.Manager
	scheduler = &mgr
	mgr.Register(0x1000)
	mgr.Register(0x2000)

	eoi := mockEOI()

	numTicks := 5
	for tick := 1; tick <= numTicks; tick++ {
		timerHandler(0x9000)

		if len(*eoi) != tick {
			t.Fatalf("[tick %d] expected %d end-of-interrupt signals; got %d", tick, tick, len(*eoi))
		}

		if got := (*eoi)[tick-1]; got != 32 {
			t.Fatalf("[tick %d] expected end-of-interrupt for vector 32; got %d", tick, got)
		}
	}

	if Ticks() != uint32(numTicks) {
		t.Fatalf("expected %d ticks; got %d", numTicks, Ticks())
	}
}

func TestTimerHandlerWithoutTasks(t *testing.T) {
	defer restore()

	var mgr task.Manager
	scheduler = &mgr
	eoi := mockEOI()

	if got := timerHandler(0xbeef0); got != 0xbeef0 {
		t.Fatalf("expected the interrupted context to be resumed; got 0x%x", got)
	}

	if len(*eoi) != 1 {
		t.Fatalf("expected one end-of-interrupt signal; got %d", len(*eoi))
	}
}

func TestSoftInterruptIdentityRestoresRegisters(t *testing.T) {
	cpu, stack := newStack(64)

	cpu.EAX, cpu.EBX, cpu.ECX, cpu.EDX = 0xaaaaaaaa, 0xbbbbbbbb, 0xcccccccc, 0xdddddddd
	cpu.ESI, cpu.EDI, cpu.EBP = 0x51515151, 0xd1d1d1d1, 0xb9b9b9b9
	cpu.EIP = 0x00101234
	exp := *cpu

	var frame task.CPUState
	softInterrupt(cpu, func(sp uintptr) uintptr {
		frame = *task.StackPointer(sp).Frame()
		return sp
	})

	if *cpu != exp {
		t.Fatalf("expected registers to be restored to\n%+v\ngot\n%+v", exp, *cpu)
	}

	// The frame handed to the scheduler must follow the CPUState layout.
	expFrame := task.CPUState{
		EAX: exp.EAX, EBX: exp.EBX, ECX: exp.ECX, EDX: exp.EDX,
		ESI: exp.ESI, EDI: exp.EDI, EBP: exp.EBP,
		EIP: exp.EIP, CS: exp.CS, EFlags: exp.EFlags,
	}
	if frame != expFrame {
		t.Fatalf("expected saved frame\n%+v\ngot\n%+v", expFrame, frame)
	}

	runtime.KeepAlive(stack)
}

func TestTimerContextSwitch(t *testing.T) {
	defer restore()

	var mgr task.Manager
	scheduler = &mgr
	eoi := mockEOI()

	const numTasks = 3
	var (
		stacks  [numTasks][]byte
		entries = [numTasks]uintptr{0x00101000, 0x00102000, 0x00103000}
	)

	for i := range stacks {
		stacks[i] = make([]byte, 512)
		if _, err := mgr.Spawn(stacks[i], entries[i]); err != nil {
			t.Fatal(err)
		}
	}

	cpu, bootStack := newStack(64)
	cpu.EIP = 0x00100000

	// First tick leaves the boot context and enters task 0.
	softInterrupt(cpu, timerHandler)

	// saved holds the registers each task had when it was last preempted.
	var saved [numTasks]softCPU
	for i := 0; i < numTasks; i++ {
		stackTop := uintptr(unsafe.Pointer(&stacks[i][0])) + uintptr(len(stacks[i]))
		saved[i] = softCPU{CS: 0x08, EFlags: 0x202, EIP: uint32(entries[i]), ESP: stackTop}
	}

	for tick := 0; tick < 3*numTasks; tick++ {
		id, _ := mgr.Current()
		if exp := tick % numTasks; id != exp {
			t.Fatalf("[tick %d] expected task %d to run; got %d", tick, exp, id)
		}

		if *cpu != saved[id] {
			t.Fatalf("[tick %d] expected task %d to resume with\n%+v\ngot\n%+v", tick, id, saved[id], *cpu)
		}

		// Let the task modify its registers before it gets preempted.
		sentinel := uint32(tick+1) << 8
		cpu.EAX, cpu.EBX, cpu.ECX, cpu.EDX = sentinel|0xa, sentinel|0xb, sentinel|0xc, sentinel|0xd
		cpu.ESI, cpu.EDI, cpu.EBP = sentinel|0x51, sentinel|0xd1, sentinel|0xb9
		cpu.EIP += 0x10
		saved[id] = *cpu

		softInterrupt(cpu, timerHandler)
	}

	if exp := 3*numTasks + 1; len(*eoi) != exp {
		t.Fatalf("expected %d end-of-interrupt signals; got %d", exp, len(*eoi))
	}

	runtime.KeepAlive(bootStack)
	runtime.KeepAlive(stacks)
}
