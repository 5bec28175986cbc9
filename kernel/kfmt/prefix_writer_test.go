package kfmt

import (
	"bytes"
	"testing"
)

func TestPrefixWriter(t *testing.T) {
	var (
		buf bytes.Buffer
		w   = PrefixWriter{Sink: &buf, Prefix: []byte("[kmain] ")}
	)

	specs := []struct {
		input string
		exp   string
	}{
		{"", ""},
		{"\n", "[kmain] \n"},
		{"idt loaded\n", "[kmain] idt loaded\n"},
		{"tasks: 2\nticks: 5\n", "[kmain] tasks: 2\n[kmain] ticks: 5\n"},
		{"no newline", "[kmain] no newline"},
	}

	for specIndex, spec := range specs {
		buf.Reset()
		w.midLine = false

		n, err := w.Write([]byte(spec.input))
		if err != nil {
			t.Fatal(err)
		}

		if n != len(spec.input) {
			t.Errorf("[spec %d] expected Write to report %d bytes; got %d", specIndex, len(spec.input), n)
		}

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected to get %q; got %q", specIndex, spec.exp, got)
		}
	}
}

func TestPrefixWriterAcrossWrites(t *testing.T) {
	var (
		buf bytes.Buffer
		w   = PrefixWriter{Sink: &buf, Prefix: []byte("> ")}
	)

	Fprintf(&w, "tick %d", 1)
	Fprintf(&w, " done\n")
	Fprintf(&w, "tick %d\n", 2)

	if exp, got := "> tick 1 done\n> tick 2\n", buf.String(); got != exp {
		t.Fatalf("expected to get %q; got %q", exp, got)
	}
}
