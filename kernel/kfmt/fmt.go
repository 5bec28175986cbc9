// Package kfmt implements the kernel's logging layer: an allocation-free
// Printf that is safe to call from boot and interrupt context, an early ring
// buffer that captures output until a console is attached and a writer that
// prefixes each line with a module tag.
package kfmt

import (
	"io"
	"unsafe"
)

// maxBufSize defines the buffer size for formatting numbers.
const maxBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numFmtBuf [maxBufSize + 1]byte

	// singleByte is a shared buffer for emitting one character at a time;
	// slicing a string into doWrite would allocate.
	singleByte = []byte(" ")

	// flushBuf moves earlyPrintBuffer contents to a new sink; io.Copy would
	// allocate.
	flushBuf [128]byte

	// earlyPrintBuffer captures Printf output until SetOutputSink is called.
	earlyPrintBuffer ringBuffer

	// outputSink receives Printf output. While nil, output is sent to
	// earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the target for calls to Printf to w and flushes any
// output that accumulated in the early print buffer into it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w == nil {
		return
	}

	for {
		n, err := earlyPrintBuffer.Read(flushBuf[:])
		if err != nil {
			return
		}
		w.Write(flushBuf[:n])
	}
}

// GetOutputSink returns the writer that currently receives Printf output.
func GetOutputSink() io.Writer {
	return outputSink
}

// Printf is a minimal fmt.Printf replacement that never allocates, so it can
// be used before the Go allocator is set up and from interrupt handlers.
//
// Supported verbs:
//
//   %s  string or []byte
//   %d  integer, base 10 (space padded)
//   %x  integer, base 16 (zero padded)
//   %o  integer, base 8 (zero padded)
//   %t  bool
//   %%  literal percent sign
//
// An optional decimal width may precede the verb. Printf does not consult
// io.Stringer and does not support %p; both would require reflection.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes its output to w.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		argIndex int
		padLen   int
		fmtLen   = len(format)
	)

	for i := 0; i < fmtLen; i++ {
		if format[i] != '%' {
			singleByte[0] = format[i]
			doWrite(w, singleByte)
			continue
		}

		padLen = 0
		for i++; i < fmtLen && format[i] >= '0' && format[i] <= '9'; i++ {
			padLen = padLen*10 + int(format[i]-'0')
		}

		if i == fmtLen {
			doWrite(w, errNoVerb)
			break
		}

		switch verb := format[i]; verb {
		case '%':
			singleByte[0] = '%'
			doWrite(w, singleByte)
		case 'd', 'x', 'o', 's', 't':
			if argIndex >= len(args) {
				doWrite(w, errMissingArg)
				continue
			}

			arg := args[argIndex]
			argIndex++

			switch verb {
			case 'd':
				fmtInt(w, arg, 10, padLen)
			case 'x':
				fmtInt(w, arg, 16, padLen)
			case 'o':
				fmtInt(w, arg, 8, padLen)
			case 's':
				fmtString(w, arg, padLen)
			case 't':
				fmtBool(w, arg)
			}
		default:
			doWrite(w, errNoVerb)
		}
	}

	for ; argIndex < len(args); argIndex++ {
		doWrite(w, errExtraArg)
	}
}

func fmtBool(w io.Writer, v interface{}) {
	bVal, ok := v.(bool)
	switch {
	case !ok:
		doWrite(w, errWrongArgType)
	case bVal:
		doWrite(w, trueValue)
	default:
		doWrite(w, falseValue)
	}
}

// fmtString writes a string or []byte value left-padded with spaces to padLen.
func fmtString(w io.Writer, v interface{}, padLen int) {
	switch str := v.(type) {
	case string:
		fmtRepeat(w, ' ', padLen-len(str))
		for i := 0; i < len(str); i++ {
			singleByte[0] = str[i]
			doWrite(w, singleByte)
		}
	case []byte:
		fmtRepeat(w, ' ', padLen-len(str))
		doWrite(w, str)
	default:
		doWrite(w, errWrongArgType)
	}
}

func fmtRepeat(w io.Writer, ch byte, count int) {
	singleByte[0] = ch
	for ; count > 0; count-- {
		doWrite(w, singleByte)
	}
}

// fmtInt writes v in the requested base. Base-10 values are padded with
// spaces, base-8 and base-16 values with zeroes; a negative sign always
// precedes the padding of zero-padded values and follows it otherwise.
func fmtInt(w io.Writer, v interface{}, base uint64, padLen int) {
	var (
		uval uint64
		neg  bool
	)

	switch t := v.(type) {
	case uint8:
		uval = uint64(t)
	case uint16:
		uval = uint64(t)
	case uint32:
		uval = uint64(t)
	case uint64:
		uval = t
	case uint:
		uval = uint64(t)
	case uintptr:
		uval = uint64(t)
	case int8:
		uval, neg = abs(int64(t))
	case int16:
		uval, neg = abs(int64(t))
	case int32:
		uval, neg = abs(int64(t))
	case int64:
		uval, neg = abs(t)
	case int:
		uval, neg = abs(int64(t))
	default:
		doWrite(w, errWrongArgType)
		return
	}

	if padLen >= maxBufSize {
		padLen = maxBufSize - 1
	}

	padCh := byte('0')
	if base == 10 {
		padCh = ' '
	}

	// Digits are emitted right to left.
	pos := len(numFmtBuf)
	for {
		digit := byte(uval % base)
		if digit < 10 {
			digit += '0'
		} else {
			digit += 'a' - 10
		}

		pos--
		numFmtBuf[pos] = digit

		if uval /= base; uval == 0 {
			break
		}
	}

	if neg && padCh == ' ' {
		pos--
		numFmtBuf[pos] = '-'
	}

	for len(numFmtBuf)-pos < padLen {
		pos--
		numFmtBuf[pos] = padCh
	}

	if neg && padCh == '0' {
		pos--
		numFmtBuf[pos] = '-'
	}

	doWrite(w, numFmtBuf[pos:])
}

func abs(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}

	return uint64(v), false
}

// doWrite hides p from escape analysis. The compiler cannot prove that p does
// not escape through the io.Writer interface and would otherwise box every
// Printf argument on the heap.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		earlyPrintBuffer.Write(p)
	}
}

// noEscape hides a pointer from escape analysis. Copied from runtime/stubs.go.
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
