package irq

// timerTrampoline is the IDT entry for TimerVector. See timer_386.s.
func timerTrampoline()
