// +build !386

package irq

import (
	"picoos/kernel/task"
	"testing"
)

func TestHostedTimerTrampoline(t *testing.T) {
	defer restore()

	var mgr task.Manager
	scheduler = &mgr
	eoi := mockEOI()

	origCPU := hostCPU
	defer func() { hostCPU = origCPU }()

	hostCPU.EAX = 0x1234
	exp := hostCPU

	timerTrampoline()

	if hostCPU != exp {
		t.Fatalf("expected the host CPU to resume unchanged without tasks; got %+v", hostCPU)
	}

	if len(*eoi) != 1 || (*eoi)[0] != uint8(TimerVector) {
		t.Fatalf("expected a single end-of-interrupt for vector %d; got %v", TimerVector, *eoi)
	}
}
