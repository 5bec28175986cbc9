package pit

import (
	"picoos/kernel/cpu"
	"testing"
)

func TestDivisor(t *testing.T) {
	specs := []struct {
		hz  uint32
		exp uint16
	}{
		{0, 0xffff},
		{1, 0xffff},
		{18, 0xffff},
		{19, 62799},
		{100, 11931},
		{1000, 1193},
		{BaseFrequency, 1},
		{BaseFrequency * 2, 1},
	}

	for specIndex, spec := range specs {
		if got := Divisor(spec.hz); got != spec.exp {
			t.Errorf("[spec %d] expected divisor %d for %d Hz; got %d", specIndex, spec.exp, spec.hz, got)
		}
	}
}

func TestSetFrequency(t *testing.T) {
	defer func() {
		portWriteByteFn = cpu.PortWriteByte
	}()

	type portWrite struct {
		port uint16
		val  uint8
	}

	var writes []portWrite
	portWriteByteFn = func(port uint16, val uint8) {
		writes = append(writes, portWrite{port, val})
	}

	if div := SetFrequency(100); div != 11931 {
		t.Fatalf("expected divisor 11931; got %d", div)
	}

	exp := []portWrite{
		{commandPort, 0x36},
		{channel0Port, 0x9b}, // 11931 = 0x2e9b
		{channel0Port, 0x2e},
	}

	if len(writes) != len(exp) {
		t.Fatalf("expected %d port writes; got %d", len(exp), len(writes))
	}

	for i := range exp {
		if writes[i] != exp[i] {
			t.Errorf("[write %d] expected %+v; got %+v", i, exp[i], writes[i])
		}
	}
}
