package software

import "fmt"

// Region is a rectangle inside one atlas page.
type Region struct {
	// Page is the index of the page holding the region.
	Page int
	// X is the left edge of the region.
	X int
	// Y is the top edge of the region.
	Y int
	// Width is the region width.
	Width int
	// Height is the region height.
	Height int
}

// IsValid returns true if the region has valid dimensions.
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// String returns a string representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("Region(page %d: %d,%d %dx%d)", r.Page, r.X, r.Y, r.Width, r.Height)
}

// shelf is a horizontal strip of the page in the shelf-packing algorithm.
type shelf struct {
	y      int // top edge
	height int // tallest item so far, padding included
	nextX  int // next free X position
}

// shelfAllocator packs rectangles into a fixed-size page by dividing it
// into horizontal shelves. A rectangle goes on the first shelf with room
// for it, or onto a new shelf below the last one.
//
// shelfAllocator is not safe for concurrent use; Backend serializes access.
type shelfAllocator struct {
	width   int
	height  int
	padding int
	shelves []shelf
	used    int
}

func newShelfAllocator(width, height, padding int) *shelfAllocator {
	if padding < 0 {
		padding = 0
	}
	return &shelfAllocator{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// allocate finds space for a width×height rectangle. The returned region
// is invalid when the page has no room left.
func (a *shelfAllocator) allocate(width, height int) Region {
	if width <= 0 || height <= 0 {
		return Region{}
	}

	paddedWidth := width + a.padding
	paddedHeight := height + a.padding
	if paddedWidth > a.width || paddedHeight > a.height {
		return Region{}
	}

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.nextX+paddedWidth > a.width {
			continue
		}
		// A shelf can only grow while it is empty.
		if paddedHeight > s.height && s.nextX > 0 {
			continue
		}
		if paddedHeight > s.height && !a.fitsBelow(i, paddedHeight) {
			continue
		}
		r := Region{X: s.nextX, Y: s.y, Width: width, Height: height}
		s.nextX += paddedWidth
		s.height = max(s.height, paddedHeight)
		a.used += width * height
		return r
	}

	newY := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		newY = last.y + last.height
	}
	if newY+paddedHeight > a.height {
		return Region{}
	}

	a.shelves = append(a.shelves, shelf{y: newY, height: paddedHeight, nextX: paddedWidth})
	a.used += width * height
	return Region{X: 0, Y: newY, Width: width, Height: height}
}

// fitsBelow reports whether shelf i can grow to height without
// overlapping the shelf after it or leaving the page.
func (a *shelfAllocator) fitsBelow(i, height int) bool {
	limit := a.height
	if i+1 < len(a.shelves) {
		limit = a.shelves[i+1].y
	}
	return a.shelves[i].y+height <= limit
}

// utilization returns the fraction of the page area in use.
func (a *shelfAllocator) utilization() float64 {
	total := a.width * a.height
	if total == 0 {
		return 0
	}
	return float64(a.used) / float64(total)
}
