package basic

// RGB is a 24-bit color triple. The term package has no RGB type of its
// own; it consumes these values directly from Screen.PaletteRGB and
// Screen.Colors to emit truecolor ANSI escapes (see term/render.go).
type RGB struct {
	R, G, B uint8
}

// Palette is the 16-entry C64 color table, in the machine's canonical POKE
// order (spec.md §4.2): black, white, red, cyan, purple, green, blue,
// yellow, orange, brown, light red, dark grey, grey, light green, light
// blue, light grey.
var Palette = [16]RGB{
	{0x00, 0x00, 0x00}, // black
	{0xff, 0xff, 0xff}, // white
	{0x88, 0x39, 0x32}, // red
	{0x67, 0xb6, 0xbd}, // cyan
	{0x8b, 0x3f, 0x96}, // purple
	{0x55, 0xa0, 0x49}, // green
	{0x40, 0x31, 0x8d}, // blue
	{0xbf, 0xce, 0x72}, // yellow
	{0x8b, 0x54, 0x29}, // orange
	{0x57, 0x42, 0x00}, // brown
	{0xb8, 0x69, 0x62}, // light red
	{0x50, 0x50, 0x50}, // dark grey
	{0x78, 0x78, 0x78}, // grey
	{0x94, 0xe0, 0x89}, // light green
	{0x78, 0x69, 0xc4}, // light blue
	{0x9f, 0x9f, 0x9f}, // light grey
}

// ColorAt coerces a POKE value (already taken mod 256 by the caller) into a
// palette index by taking it mod 16, matching the original hardware's
// nibble-wide color registers.
func ColorAt(value int) RGB {
	return Palette[((value%16)+16)%16]
}
