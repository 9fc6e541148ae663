// Package pixel implements the 16-bit color format and pixel stream types used by ST7789 displays.
//
// This module provides a 5-6-5 RGB color model, compatible with Go's native [color.Color] and
// [image.Image] / [draw.Image] interfaces, and lazy (coordinate, color) sequences that can be
// streamed to a display without materializing a frame.
package pixel
