package gate

// Each trampoline pushes its vector number and calls exceptionHandler. None of
// them returns.

func divErrorTrampoline()
func invalidOpcodeTrampoline()
func doubleFaultTrampoline()
func gpfTrampoline()
func pageFaultTrampoline()

// genericTrampoline is installed on every vector without a dedicated handler
// and pushes GenericVector.
func genericTrampoline()

// hang halts the CPU with interrupts disabled.
func hang()
