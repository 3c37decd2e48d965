package render

import "strings"

// MaxIntensity is the brightest LED level. Levels run 0 (off) to 9.
const MaxIntensity = 9

// Frame is one full display image: a row-major matrix of LED intensity
// levels. A Frame is plain data with no behavior tied to any output device.
type Frame struct {
	Width, Height int
	cells         []uint8
}

func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		cells:  make([]uint8, width*height),
	}
}

// At returns the intensity at (col, row), row 0 at the top.
func (f *Frame) At(col, row int) uint8 {
	return f.cells[row*f.Width+col]
}

func (f *Frame) set(col, row int, level uint8) {
	f.cells[row*f.Width+col] = level
}

// Clone returns an independent copy.
func (f *Frame) Clone() *Frame {
	c := NewFrame(f.Width, f.Height)
	copy(c.cells, f.cells)
	return c
}

// Equal reports whether two frames have identical dimensions and levels.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil || f.Width != other.Width || f.Height != other.Height {
		return false
	}
	for i := range f.cells {
		if f.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String renders the frame as digit rows, one line per row. Useful in
// logs and test failures.
func (f *Frame) String() string {
	var b strings.Builder
	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			b.WriteByte('0' + f.At(col, row))
		}
		if row < f.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
