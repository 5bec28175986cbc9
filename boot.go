package main

import "picoos/kernel/kmain"

// main is the only Go symbol that the boot assembly code calls into. It works
// as a trampoline for the actual kernel entrypoint (kmain.Kmain) and prevents
// the Go compiler from optimizing away the kernel code, as the compiler is not
// aware of the boot code.
//
// main is not expected to return. If it does, the boot code halts the CPU.
func main() {
	kmain.Kmain()
}
