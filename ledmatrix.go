package ledmatrix

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/flavioheleno/ledmatrix/bus"
	"github.com/flavioheleno/ledmatrix/mono"
)

// DefaultIntensity is the intensity used when no options are given.
const DefaultIntensity = 8

// ErrHalted is returned by operations that reach the hardware after Halt.
var ErrHalted = errors.New("ledmatrix: halted")

// Opts is the configuration of the display.
type Opts struct {
	// Tiling in modules. Both zero (with no Order and no Rotated) means a
	// single module.
	Columns int
	Rows    int

	// Order[m] is the chain position of the module at logical position m,
	// position 0 being the device nearest the bus. nil chains modules in
	// logical order.
	Order []int
	// Rotated[m] is true when module m is mounted upside down.
	Rotated []bool

	// Intensity is the initial brightness (0-15), clamped.
	Intensity int

	// Logger receives debug messages; nil disables logging.
	Logger *zerolog.Logger
}

// Dev is a tiled LED matrix display.
//
// Drawing operations only change the in-memory framebuffer; Flush (or Draw)
// sends it to the hardware. Dev is not safe for concurrent use.
type Dev struct {
	b      bus.Bus
	layout *Layout
	log    zerolog.Logger

	// buffer holds 8 row bytes per chain position, in wire order: byte
	// chain*8+row is written to digit register row+1 of that device.
	buffer []byte

	intensity int
	halted    bool
}

// NewBitBang returns a display driven through three GPIO lines connected to
// DIN, CLK and LOAD/CS of the first device.
func NewBitBang(data, clock, sel gpio.PinOut, opts *Opts) (*Dev, error) {
	b, err := bus.NewBitBang(data, clock, sel)
	if err != nil {
		return nil, err
	}
	return New(b, opts)
}

// NewSPI returns a display driven through a hardware SPI port.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	b, err := bus.NewSPI(p)
	if err != nil {
		return nil, err
	}
	return New(b, opts)
}

// New returns a display on the given bus and runs the device initialization
// sequence.
//
// opts can be nil to use a single module at DefaultIntensity.
func New(b bus.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{Intensity: DefaultIntensity}
	}
	columns, rows := opts.Columns, opts.Rows
	if columns == 0 && rows == 0 && opts.Order == nil && opts.Rotated == nil {
		columns, rows = 1, 1
	}
	layout, err := NewLayout(columns, rows, opts.Order, opts.Rotated)
	if err != nil {
		return nil, err
	}

	d := &Dev{
		b:         b,
		layout:    layout,
		log:       zerolog.Nop(),
		buffer:    make([]byte, ModuleSize*layout.Modules()),
		intensity: clampIntensity(opts.Intensity),
	}
	if opts.Logger != nil {
		d.log = opts.Logger.With().Str("dev", d.String()).Logger()
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// init wakes every device in the chain and blanks it.
func (d *Dev) init() error {
	cmds := [][2]int{
		{int(bus.RegDisplayTest), 0},
		{int(bus.RegShutdown), 1},
		{int(bus.RegScanLimit), ModuleSize - 1},
		{int(bus.RegDecodeMode), 0}, // Raw rows, no Code B decoding
		{int(bus.RegIntensity), d.intensity},
	}
	for _, cmd := range cmds {
		if err := d.broadcast(cmd[0], cmd[1]); err != nil {
			return fmt.Errorf("ledmatrix: init: %w", err)
		}
	}
	if err := d.flush(); err != nil {
		return fmt.Errorf("ledmatrix: init: %w", err)
	}
	d.log.Debug().
		Int("modules", d.layout.Modules()).
		Int("intensity", d.intensity).
		Msg("display initialized")
	return nil
}

// Layout returns the module layout of the display.
func (d *Dev) Layout() *Layout {
	return d.layout
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.layout.Bounds()
}

// Draw copies src onto the framebuffer and flushes it.
//
// A full-size *mono.HorizontalMSB source at the origin is copied row by row;
// any other image is converted pixel by pixel through image1bit.BitModel.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return ErrHalted
	}
	dst = dst.Intersect(d.Bounds())
	if dst.Empty() {
		return nil
	}

	if img, ok := src.(*mono.HorizontalMSB); ok {
		if dst == d.Bounds() && sp == (image.Point{}) && img.Rect == d.Bounds() {
			if err := d.SetDisplayRows(img.Pix); err != nil {
				return err
			}
			return d.flush()
		}
	}

	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		for x := dst.Min.X; x < dst.Max.X; x++ {
			c := src.At(sp.X+x-dst.Min.X, sp.Y+y-dst.Min.Y)
			on := image1bit.BitModel.Convert(c).(image1bit.Bit)
			if err := d.SetPixel(x, y, bool(on)); err != nil {
				return err
			}
		}
	}
	return d.flush()
}

// Flush sends the framebuffer to the chain.
//
// Each of the 8 rows is shifted into every device and latched in one
// transfer, so a row is never visible half written.
func (d *Dev) Flush() error {
	if d.halted {
		return ErrHalted
	}
	return d.flush()
}

func (d *Dev) flush() error {
	n := d.layout.Modules()
	for row := 0; row < ModuleSize; row++ {
		if err := d.b.Begin(); err != nil {
			return err
		}
		// The first word shifted ends up in the device furthest from the bus.
		for chain := n - 1; chain >= 0; chain-- {
			if err := d.b.SendRow(int(bus.RegDigit0)+row, d.buffer[chain*ModuleSize+row], bus.MSBFirst); err != nil {
				_ = d.b.End()
				return err
			}
		}
		if err := d.b.End(); err != nil {
			return err
		}
	}
	return nil
}

// SendCommand writes data to register of every device.
func (d *Dev) SendCommand(register, data int) error {
	if d.halted {
		return ErrHalted
	}
	return d.broadcast(register, data)
}

// SendCommandTo writes data to register of the device of one logical module;
// the other devices receive a no-op.
func (d *Dev) SendCommandTo(module, register, data int) error {
	if d.halted {
		return ErrHalted
	}
	chain, err := d.layout.Chain(module)
	if err != nil {
		return err
	}
	return bus.SendTo(d.b, d.layout.Modules(), chain, register, data)
}

// Intensity returns the last intensity set on all modules.
func (d *Dev) Intensity() int {
	return d.intensity
}

// SetIntensity sets the brightness of every module. intensity is clamped to
// [0, 15].
func (d *Dev) SetIntensity(intensity int) error {
	intensity = clampIntensity(intensity)
	if err := d.SendCommand(int(bus.RegIntensity), intensity); err != nil {
		return err
	}
	d.intensity = intensity
	d.log.Debug().Int("intensity", intensity).Msg("intensity set")
	return nil
}

// SetModuleIntensity sets the brightness of one module, addressed by its
// logical tiling position. intensity is clamped to [0, 15].
func (d *Dev) SetModuleIntensity(module, intensity int) error {
	intensity = clampIntensity(intensity)
	if err := d.SendCommandTo(module, int(bus.RegIntensity), intensity); err != nil {
		return err
	}
	d.log.Debug().Int("module", module).Int("intensity", intensity).Msg("module intensity set")
	return nil
}

// TestDisplay turns the display test mode on or off. In test mode every LED
// is lit at full brightness regardless of the framebuffer.
func (d *Dev) TestDisplay(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return d.SendCommand(int(bus.RegDisplayTest), v)
}

// Halt puts every device in shutdown mode.
// After calling Halt, operations that reach the hardware return ErrHalted.
func (d *Dev) Halt() error {
	d.halted = true
	d.log.Debug().Msg("halting display")
	return d.broadcast(int(bus.RegShutdown), 0)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	r := d.layout.Bounds()
	return fmt.Sprintf("ledmatrix.Dev{%dx%d modules, %dx%d}", d.layout.Columns(), d.layout.Rows(), r.Dx(), r.Dy())
}

func (d *Dev) broadcast(register, data int) error {
	return bus.Broadcast(d.b, d.layout.Modules(), register, data)
}

func clampIntensity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 15 {
		return 15
	}
	return v
}

var _ display.Drawer = &Dev{}
