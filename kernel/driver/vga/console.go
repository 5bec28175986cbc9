// Package vga implements a text-mode terminal on top of the VGA text buffer.
package vga

import (
	"reflect"
	"unsafe"
)

// Attr defines a color attribute.
type Attr uint16

// The set of attributes that can be passed to MakeAttr.
const (
	Black Attr = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGrey
	Grey
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	LightBrown
	White
)

const (
	// FramebufferAddr is the physical address of the color text buffer.
	FramebufferAddr = uintptr(0xb8000)

	// Width and Height are the dimensions of the standard text mode.
	Width  = 80
	Height = 25

	clearChar = byte(' ')
)

// MakeAttr packs a foreground and background color into a cell attribute.
func MakeAttr(fg, bg Attr) Attr {
	return (bg&0xf)<<4 | fg&0xf
}

// Console is a terminal that renders text into a VGA-compatible framebuffer
// of 16-bit cells (character in the low byte, attribute in the high byte). It
// understands CR and LF and scrolls when the cursor moves past the last line.
//
// Console does no locking: it is written to from interrupt handlers that may
// have preempted a writer.
type Console struct {
	width, height uint16
	curX, curY    uint16
	attr          Attr

	fb []uint16
}

// Init attaches the console to the framebuffer at fbAddr and resets the cursor.
func (c *Console) Init(width, height uint16, fbAddr uintptr) {
	c.width, c.height = width, height
	c.curX, c.curY = 0, 0
	c.attr = MakeAttr(LightGrey, Black)

	c.fb = *(*[]uint16)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  int(width) * int(height),
		Cap:  int(width) * int(height),
		Data: fbAddr,
	}))
}

// Dimensions returns the console width and height in characters.
func (c *Console) Dimensions() (uint16, uint16) {
	return c.width, c.height
}

// Position returns the current cursor position (x, y).
func (c *Console) Position() (uint16, uint16) {
	return c.curX, c.curY
}

// SetAttr sets the attribute used for subsequent writes.
func (c *Console) SetAttr(attr Attr) {
	c.attr = attr
}

// Clear blanks the screen and moves the cursor to the top-left corner.
func (c *Console) Clear() {
	c.clearLines(0, c.height)
	c.curX, c.curY = 0, 0
}

// WriteAt stores ch with the given attribute at (x, y) without moving the
// cursor. Out of bounds coordinates are ignored.
//go:nosplit
func (c *Console) WriteAt(x, y uint16, ch byte, attr Attr) {
	if x >= c.width || y >= c.height {
		return
	}

	c.fb[y*c.width+x] = uint16(attr)<<8 | uint16(ch)
}

// Write implements io.Writer.
func (c *Console) Write(data []byte) (int, error) {
	for _, b := range data {
		switch b {
		case '\r':
			c.curX = 0
		case '\n':
			c.curX = 0
			c.lf()
		default:
			c.fb[c.curY*c.width+c.curX] = uint16(c.attr)<<8 | uint16(b)
			if c.curX++; c.curX == c.width {
				c.curX = 0
				c.lf()
			}
		}
	}

	return len(data), nil
}

// lf advances the cursor to the next line, scrolling the contents up by one
// line if the cursor is on the last line.
func (c *Console) lf() {
	if c.curY+1 < c.height {
		c.curY++
		return
	}

	copy(c.fb, c.fb[c.width:])
	c.clearLines(c.height-1, 1)
}

func (c *Console) clearLines(y, count uint16) {
	clr := uint16(MakeAttr(Black, Black))<<8 | uint16(clearChar)
	for i := y * c.width; i < (y+count)*c.width; i++ {
		c.fb[i] = clr
	}
}
