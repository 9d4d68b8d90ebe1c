// Package ledmatrix controls a tiled display of 8×8 LED modules driven by
// daisy-chained MAX7219/MAX7221 chips.
//
// The driver keeps a 1-bit framebuffer for the whole display and translates
// display coordinates to the device, row and bit that light each LED. It
// implements the display.Drawer interface from periph.io.
//
// # Display Characteristics
//
// - Monochrome, one bit per LED
// - Any number of 8×8 modules arranged in columns × rows
// - Modules may be chained in any order
// - Any module may be mounted rotated by 180°
// - Global or per-module intensity (0-15)
// - Write-only: nothing is ever read back from the chips
//
// # Hardware Connection
//
// The chips share a 3-wire synchronous bus. Connect the first module of the
// chain to three GPIO pins, or to an SPI port:
//
//	Module Pin → System Pin
//	GND        → GND
//	VCC        → 5V
//	DIN        → GPIO (or SPI MOSI)
//	CLK        → GPIO (or SPI SCLK)
//	CS/LOAD    → GPIO (or SPI CE0)
//
// DOUT of each module goes to DIN of the next one; CLK and CS/LOAD are shared.
//
// # Chain Order and Rotation
//
// Modules are numbered by logical position, left to right and top to bottom.
// Opts.Order gives, for each logical position, the position of that module in
// the chain, 0 being the module wired to the system. A 3×2 display wired as a
// serpentine looks like this:
//
//	>-0--1--2
//	        |
//	  5--4--3
//
// which is described by:
//
//	Order:   []int{0, 1, 2, 5, 4, 3}
//	Rotated: []bool{false, false, false, true, true, true}
//
// The second row is usually mounted upside down so that the cables stay
// short; Rotated tells the driver to mirror both the rows and the columns of
// those modules.
//
// To check a configuration, walk a single dot from the top left to the bottom
// right of the display. If the dot jumps when it moves from one module to the
// next, the order or the rotation of that module is wrong.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/host/v3"
//		"github.com/flavioheleno/ledmatrix"
//	)
//
//	func main() {
//		host.Init()
//
//		dev, _ := ledmatrix.NewBitBang(
//			gpioreg.ByName("GPIO10"), // DIN
//			gpioreg.ByName("GPIO11"), // CLK
//			gpioreg.ByName("GPIO8"),  // CS/LOAD
//			&ledmatrix.Opts{
//				Columns:   3,
//				Rows:      2,
//				Order:     []int{0, 1, 2, 5, 4, 3},
//				Rotated:   []bool{false, false, false, true, true, true},
//				Intensity: 4,
//			})
//		defer dev.Halt()
//
//		dev.DrawLine(0, 0, 23, 15)
//		dev.SetPixel(23, 0, true)
//		dev.Flush()
//	}
//
// # Drawing Modes
//
// Pixel operations (SetPixel, InvertPixel, DrawLine, Clear, ...) only touch the
// framebuffer. Call Flush to send it to the chips. Each of the 8 rows is
// shifted through the whole chain and latched at once, so a row is never shown
// half written.
//
// Draw accepts any image.Image and flushes right away. A full-size
// *mono.HorizontalMSB is copied without per-pixel conversion:
//
//	img := mono.NewHorizontalMSB(dev.Bounds())
//	img.SetBit(3, 4, image1bit.On)
//	dev.Draw(dev.Bounds(), img, image.Point{})
//
// # Errors
//
// Invalid layouts are rejected by New with an error wrapping
// ErrInvalidLayout. Coordinates or module indexes outside the display return
// an error wrapping ErrOutOfRange; they are never clamped, since that would
// light the wrong LED. Intensity and command values are clamped to the width
// of the chip's registers instead.
//
// # Datasheet
//
// https://www.analog.com/media/en/technical-documentation/data-sheets/MAX7219-MAX7221.pdf
package ledmatrix
