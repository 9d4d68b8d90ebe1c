package ledmatrix

import (
	"errors"
	"fmt"
	"image"
)

// ModuleSize is the width and height in pixels of one LED module.
const ModuleSize = 8

var (
	// ErrInvalidLayout is wrapped by every layout validation error.
	ErrInvalidLayout = errors.New("ledmatrix: invalid layout")
	// ErrOutOfRange is wrapped by errors about coordinates or module indexes
	// outside the display.
	ErrOutOfRange = errors.New("ledmatrix: out of range")
)

// Location is the physical position of one LED: the device's position in the
// chain (0 nearest the bus), the digit register row (0-7) and the bit within
// the row, 0 being the first data bit on the wire.
type Location struct {
	Chain int
	Row   int
	Bit   int
}

// Mask returns the bit mask of l.Bit in a row byte.
func (l Location) Mask() byte {
	return 0x80 >> uint(l.Bit)
}

// Layout describes how modules tile the display and how they are wired.
//
// Modules are numbered by their logical tiling position, left to right then
// top to bottom. A Layout is immutable.
type Layout struct {
	columns int
	rows    int
	order   []int  // logical module -> chain position
	module  []int  // chain position -> logical module
	rotated []bool // logical module -> mounted upside down
}

// NewLayout validates and returns a layout of columns x rows modules.
//
// order[m] is the chain position of the module at logical position m and must
// be a permutation of [0, columns*rows). rotated[m] tells that module m is
// mounted rotated by 180°. A nil order means modules are chained in logical
// order and a nil rotated means no module is rotated.
func NewLayout(columns, rows int, order []int, rotated []bool) (*Layout, error) {
	if columns <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: %dx%d modules", ErrInvalidLayout, columns, rows)
	}
	n := columns * rows
	if order == nil {
		order = make([]int, n)
		for i := range order {
			order[i] = i
		}
	}
	if rotated == nil {
		rotated = make([]bool, n)
	}
	if len(order) != n {
		return nil, fmt.Errorf("%w: chain order has %d entries, want %d", ErrInvalidLayout, len(order), n)
	}
	if len(rotated) != n {
		return nil, fmt.Errorf("%w: rotation has %d entries, want %d", ErrInvalidLayout, len(rotated), n)
	}

	l := &Layout{
		columns: columns,
		rows:    rows,
		order:   make([]int, n),
		module:  make([]int, n),
		rotated: make([]bool, n),
	}
	copy(l.order, order)
	copy(l.rotated, rotated)
	for i := range l.module {
		l.module[i] = -1
	}
	for m, c := range l.order {
		if c < 0 || c >= n {
			return nil, fmt.Errorf("%w: chain position %d of module %d outside [0, %d)", ErrInvalidLayout, c, m, n)
		}
		if l.module[c] != -1 {
			return nil, fmt.Errorf("%w: chain position %d used by modules %d and %d", ErrInvalidLayout, c, l.module[c], m)
		}
		l.module[c] = m
	}
	return l, nil
}

// Columns returns the number of modules per display row.
func (l *Layout) Columns() int { return l.columns }

// Rows returns the number of module rows.
func (l *Layout) Rows() int { return l.rows }

// Modules returns the number of modules.
func (l *Layout) Modules() int { return len(l.order) }

// Bounds returns the display bounds in pixels.
func (l *Layout) Bounds() image.Rectangle {
	return image.Rect(0, 0, ModuleSize*l.columns, ModuleSize*l.rows)
}

// Chain returns the chain position of the logical module.
func (l *Layout) Chain(module int) (int, error) {
	if err := l.checkModule(module); err != nil {
		return 0, err
	}
	return l.order[module], nil
}

// Module returns the logical module at the chain position.
func (l *Layout) Module(chain int) (int, error) {
	if chain < 0 || chain >= len(l.module) {
		return 0, fmt.Errorf("%w: chain position %d", ErrOutOfRange, chain)
	}
	return l.module[chain], nil
}

// Rotated reports whether the logical module is mounted upside down.
func (l *Layout) Rotated(module int) (bool, error) {
	if err := l.checkModule(module); err != nil {
		return false, err
	}
	return l.rotated[module], nil
}

// Locate translates display pixel (x, y) to the LED that shows it.
//
// A module rotated by 180° has both its rows and its bits mirrored.
func (l *Layout) Locate(x, y int) (Location, error) {
	if !(image.Point{X: x, Y: y}.In(l.Bounds())) {
		return Location{}, fmt.Errorf("%w: pixel (%d, %d) outside %v", ErrOutOfRange, x, y, l.Bounds())
	}
	m := (y/ModuleSize)*l.columns + x/ModuleSize
	lx, ly := x%ModuleSize, y%ModuleSize
	if l.rotated[m] {
		lx, ly = ModuleSize-1-lx, ModuleSize-1-ly
	}
	return Location{Chain: l.order[m], Row: ly, Bit: lx}, nil
}

// Pixel is the inverse of Locate.
func (l *Layout) Pixel(loc Location) (x, y int, err error) {
	if loc.Chain < 0 || loc.Chain >= len(l.module) ||
		loc.Row < 0 || loc.Row >= ModuleSize || loc.Bit < 0 || loc.Bit >= ModuleSize {
		return 0, 0, fmt.Errorf("%w: location %+v", ErrOutOfRange, loc)
	}
	m := l.module[loc.Chain]
	lx, ly := loc.Bit, loc.Row
	if l.rotated[m] {
		lx, ly = ModuleSize-1-lx, ModuleSize-1-ly
	}
	return (m%l.columns)*ModuleSize + lx, (m/l.columns)*ModuleSize + ly, nil
}

// String implements fmt.Stringer.
func (l *Layout) String() string {
	return fmt.Sprintf("ledmatrix.Layout{%dx%d, order=%v, rotated=%v}", l.columns, l.rows, l.order, l.rotated)
}

func (l *Layout) checkModule(module int) error {
	if module < 0 || module >= len(l.order) {
		return fmt.Errorf("%w: module %d outside [0, %d)", ErrOutOfRange, module, len(l.order))
	}
	return nil
}
