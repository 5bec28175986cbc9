package kmain

import "picoos/kernel/driver/vga"

var spinnerFrames = [...]byte{'|', '/', '-', '\\'}

// The boot tasks run on taskStacks, outside the bounds of the boot g0, so
// nothing they call may carry a stack check prologue.

//go:nosplit
func spinnerTask0() { spin(0) }

//go:nosplit
func spinnerTask1() { spin(1) }

// spin animates a spinner in the bottom-right corner of the screen, one cell
// per task, so that preemption is visible.
//go:nosplit
func spin(slot uint16) {
	var (
		x    = vga.Width - 1 - slot*2
		attr = vga.MakeAttr(vga.LightGreen+vga.Attr(slot), vga.Black)
	)

	for frame := 0; ; frame++ {
		console.WriteAt(x, vga.Height-1, spinnerFrames[(frame>>16)&3], attr)
	}
}
