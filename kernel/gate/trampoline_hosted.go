// +build !386

package gate

// On hosted targets the trampolines are plain Go functions that follow the
// same protocol as their assembly counterparts: pass the vector number to
// exceptionHandler and never resume the faulting code.

func divErrorTrampoline()      { exceptionHandler(uint32(DivideError)) }
func invalidOpcodeTrampoline() { exceptionHandler(uint32(InvalidOpcode)) }
func doubleFaultTrampoline()   { exceptionHandler(uint32(DoubleFault)) }
func gpfTrampoline()           { exceptionHandler(uint32(GeneralProtectionFault)) }
func pageFaultTrampoline()     { exceptionHandler(uint32(PageFault)) }
func genericTrampoline()       { exceptionHandler(GenericVector) }
