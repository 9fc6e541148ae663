package st7789

import "fmt"

// ScrollState is the vertical scroll layout in panel rows. The rows always
// add up to the panel height and Offset is below ScrollArea.
type ScrollState struct {
	FixedTop    uint16
	ScrollArea  uint16
	FixedBottom uint16
	Offset      uint16
}

func (s ScrollState) String() string {
	return fmt.Sprintf("top=%d area=%d bottom=%d offset=%d", s.FixedTop, s.ScrollArea, s.FixedBottom, s.Offset)
}

// ScrollState returns the current scroll layout.
func (d *Dev) ScrollState() ScrollState {
	return d.scroll
}

// ConfigureScroll splits the panel rows into a fixed top area, a scrolling
// area and a fixed bottom area, and resets the scroll offset to 0. The scroll
// area needs at least one row. Scrolling always runs along the panel's native
// rows.
func (d *Dev) ConfigureScroll(fixedTop, scrollArea, fixedBottom uint16) error {
	if sum := int(fixedTop) + int(scrollArea) + int(fixedBottom); sum != d.height {
		return fmt.Errorf("%w: %d+%d+%d=%d rows, display has %d", ErrInvalidScrollLayout,
			fixedTop, scrollArea, fixedBottom, sum, d.height)
	}
	if scrollArea == 0 {
		return fmt.Errorf("%w: empty scroll area", ErrInvalidScrollLayout)
	}
	if err := d.ready(); err != nil {
		return err
	}
	return d.applyScroll(ScrollState{
		FixedTop:    fixedTop,
		ScrollArea:  scrollArea,
		FixedBottom: fixedBottom,
	})
}

// SetScrollOffset moves the scroll area content by offset rows. The
// controller wraps rows around within the scroll area.
func (d *Dev) SetScrollOffset(offset uint16) error {
	if offset >= d.scroll.ScrollArea {
		return outOfBounds("scroll offset %d, scroll area has %d rows", offset, d.scroll.ScrollArea)
	}
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.setScrollOffset(d.scrollStart(offset)); err != nil {
		return err
	}
	d.scroll.Offset = offset
	return nil
}

// resetScroll makes the whole panel one scroll area at offset 0.
func (d *Dev) resetScroll() error {
	return d.applyScroll(ScrollState{ScrollArea: uint16(d.height)})
}

func (d *Dev) applyScroll(s ScrollState) error {
	// The controller scrolls all of its memory rows; rows outside the panel
	// are folded into the fixed areas.
	var (
		top    = uint16(d.rowOffset) + s.FixedTop
		bottom = s.FixedBottom + uint16(MaxHeight-d.rowOffset-d.height)
	)
	if err := d.setScrollArea(top, s.ScrollArea, bottom); err != nil {
		return err
	}
	if err := d.setScrollOffset(top); err != nil {
		return err
	}
	d.scroll = s
	return nil
}

// scrollStart is the memory row shown first in the scroll area.
func (d *Dev) scrollStart(offset uint16) uint16 {
	return uint16(d.rowOffset) + d.scroll.FixedTop + offset
}
