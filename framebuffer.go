package ledmatrix

import (
	"fmt"
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/flavioheleno/ledmatrix/bus"
)

// SetPixel turns the LED showing pixel (x, y) on or off.
func (d *Dev) SetPixel(x, y int, on bool) error {
	loc, err := d.layout.Locate(x, y)
	if err != nil {
		return err
	}
	i := loc.Chain*ModuleSize + loc.Row
	if on {
		d.buffer[i] |= loc.Mask()
	} else {
		d.buffer[i] &^= loc.Mask()
	}
	return nil
}

// InvertPixel toggles the LED showing pixel (x, y).
func (d *Dev) InvertPixel(x, y int) error {
	loc, err := d.layout.Locate(x, y)
	if err != nil {
		return err
	}
	d.buffer[loc.Chain*ModuleSize+loc.Row] ^= loc.Mask()
	return nil
}

// Pixel reports whether pixel (x, y) is on in the framebuffer.
func (d *Dev) Pixel(x, y int) (bool, error) {
	loc, err := d.layout.Locate(x, y)
	if err != nil {
		return false, err
	}
	return d.buffer[loc.Chain*ModuleSize+loc.Row]&loc.Mask() != 0, nil
}

// At implements image.Image over the framebuffer. Pixels outside the display
// are Off.
func (d *Dev) At(x, y int) color.Color {
	on, err := d.Pixel(x, y)
	if err != nil {
		return image1bit.Off
	}
	return image1bit.Bit(on)
}

// Clear sets every LED of the display.
func (d *Dev) Clear(on bool) {
	fill(d.buffer, on)
}

// ClearModule sets every LED of one logical module.
func (d *Dev) ClearModule(module int, on bool) error {
	block, err := d.block(module)
	if err != nil {
		return err
	}
	fill(block, on)
	return nil
}

// Invert toggles every LED of the display.
func (d *Dev) Invert() {
	invert(d.buffer)
}

// InvertModule toggles every LED of one logical module.
func (d *Dev) InvertModule(module int) error {
	block, err := d.block(module)
	if err != nil {
		return err
	}
	invert(block)
	return nil
}

// SetModuleRows replaces the 8 rows of one logical module.
//
// rows[0] is the top row as seen on the display and the most significant bit
// of each byte is the leftmost LED, whatever the module's orientation.
func (d *Dev) SetModuleRows(module int, rows []byte) error {
	if len(rows) != ModuleSize {
		return fmt.Errorf("ledmatrix: module rows must be %d bytes, got %d", ModuleSize, len(rows))
	}
	block, err := d.block(module)
	if err != nil {
		return err
	}
	if d.layout.rotated[module] {
		for r, b := range rows {
			block[ModuleSize-1-r] = bus.Reverse(b)
		}
		return nil
	}
	copy(block, rows)
	return nil
}

// SetDisplayRows replaces the whole framebuffer with a row-major 1-bit
// raster: byte data[y*columns+c] holds display row y of module column c, most
// significant bit leftmost. This is the layout of mono.HorizontalMSB.Pix for
// an image of the display's bounds.
func (d *Dev) SetDisplayRows(data []byte) error {
	columns := d.layout.Columns()
	if want := len(d.buffer); len(data) != want {
		return fmt.Errorf("ledmatrix: display rows must be %d bytes, got %d", want, len(data))
	}
	rows := make([]byte, ModuleSize)
	for m := 0; m < d.layout.Modules(); m++ {
		top := (m / columns) * ModuleSize
		for r := range rows {
			rows[r] = data[(top+r)*columns+m%columns]
		}
		if err := d.SetModuleRows(m, rows); err != nil {
			return err
		}
	}
	return nil
}

// block returns the framebuffer rows of a logical module.
func (d *Dev) block(module int) ([]byte, error) {
	chain, err := d.layout.Chain(module)
	if err != nil {
		return nil, err
	}
	return d.buffer[chain*ModuleSize : (chain+1)*ModuleSize], nil
}

func fill(b []byte, on bool) {
	v := byte(0x00)
	if on {
		v = 0xFF
	}
	for i := range b {
		b[i] = v
	}
}

func invert(b []byte) {
	for i := range b {
		b[i] = ^b[i]
	}
}
