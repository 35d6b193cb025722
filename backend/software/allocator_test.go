package software

import "testing"

func TestShelfAllocator_Basic(t *testing.T) {
	a := newShelfAllocator(100, 100, 0)

	r1 := a.allocate(30, 20)
	r2 := a.allocate(30, 10)
	r3 := a.allocate(50, 20)

	if r1 != (Region{X: 0, Y: 0, Width: 30, Height: 20}) {
		t.Errorf("r1 = %v", r1)
	}
	if r2 != (Region{X: 30, Y: 0, Width: 30, Height: 10}) {
		t.Errorf("r2 = %v", r2)
	}
	// 30+30+50 > 100: new shelf below the first.
	if r3 != (Region{X: 0, Y: 20, Width: 50, Height: 20}) {
		t.Errorf("r3 = %v", r3)
	}
}

func TestShelfAllocator_Padding(t *testing.T) {
	a := newShelfAllocator(100, 100, 2)

	r1 := a.allocate(10, 10)
	r2 := a.allocate(10, 10)
	if r2.X != r1.X+12 {
		t.Errorf("r2.X = %d, want %d", r2.X, r1.X+12)
	}
}

func TestShelfAllocator_Full(t *testing.T) {
	a := newShelfAllocator(64, 64, 0)

	n := 0
	for a.allocate(16, 16).IsValid() {
		n++
		if n > 100 {
			t.Fatal("allocator never filled up")
		}
	}
	if n != 16 {
		t.Errorf("allocated %d 16x16 regions in 64x64, want 16", n)
	}
	if got := a.utilization(); got != 1 {
		t.Errorf("utilization() = %v, want 1", got)
	}

	if a.allocate(1, 1).IsValid() {
		t.Error("allocate on a full page succeeded")
	}
}

func TestShelfAllocator_Invalid(t *testing.T) {
	a := newShelfAllocator(32, 32, 0)

	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 4},
		{"negative height", 4, -1},
		{"too wide", 33, 4},
		{"too tall", 4, 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := a.allocate(tt.w, tt.h); r.IsValid() {
				t.Errorf("allocate(%d, %d) = %v, want invalid", tt.w, tt.h, r)
			}
		})
	}
}

func TestShelfAllocator_NoOverlap(t *testing.T) {
	a := newShelfAllocator(128, 128, 1)

	var regions []Region
	sizes := [][2]int{{8, 12}, {32, 32}, {8, 12}, {16, 8}, {40, 20}, {8, 12}, {60, 5}}
	for _, sz := range sizes {
		r := a.allocate(sz[0], sz[1])
		if !r.IsValid() {
			t.Fatalf("allocate(%d, %d) failed", sz[0], sz[1])
		}
		if r.X+r.Width > 128 || r.Y+r.Height > 128 {
			t.Errorf("%v leaves the page", r)
		}
		for _, o := range regions {
			if r.X < o.X+o.Width && o.X < r.X+r.Width && r.Y < o.Y+o.Height && o.Y < r.Y+r.Height {
				t.Errorf("%v overlaps %v", r, o)
			}
		}
		regions = append(regions, r)
	}
}
