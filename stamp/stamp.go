// Package stamp implements the immutable NxN occupancy mask used to place
// objects onto the automaton's fine-grained physics grid.
package stamp

// Offset is a relative (x, y) displacement within or around a Stamp's box.
type Offset struct {
	X, Y int
}

// Stamp is a fixed-side NxN boolean occupancy mask, immutable after
// construction. Construction derives the iteration order over occupied
// cells (MapCoords) and the set of unoccupied cells immediately outside the
// mask (Border), used as candidate targets for mass redistribution when the
// stamp moves.
type Stamp struct {
	side      int
	mask      []bool // row-major, side*side
	mapCoords []Offset
	border    []Offset
}

// New builds a Stamp from an explicit NxN mask. mask must have exactly
// side*side entries in row-major order; mask[y*side+x] is true iff (x, y)
// is occupied.
func New(side int, mask []bool) *Stamp {
	if side <= 0 {
		panic("stamp: side must be positive")
	}
	if len(mask) != side*side {
		panic("stamp: mask length must equal side*side")
	}

	s := &Stamp{side: side, mask: append([]bool(nil), mask...)}
	s.deriveMapCoords()
	s.deriveBorder()
	return s
}

// NewSquare builds a fully-occupied side x side Stamp — the common case for
// rectangular solid objects (walls, rocks, the 1x1 player stamp).
func NewSquare(side int) *Stamp {
	mask := make([]bool, side*side)
	for i := range mask {
		mask[i] = true
	}
	return New(side, mask)
}

// NewRect builds a fully-occupied w x h Stamp anchored at its top-left
// corner, for multi-cell rectangular footprints.
func NewRect(w, h int) *Stamp {
	side := w
	if h > side {
		side = h
	}
	mask := make([]bool, side*side)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mask[y*side+x] = true
		}
	}
	return New(side, mask)
}

func (s *Stamp) at(x, y int) bool {
	if x < 0 || y < 0 || x >= s.side || y >= s.side {
		return false
	}
	return s.mask[y*s.side+x]
}

func (s *Stamp) deriveMapCoords() {
	for y := 0; y < s.side; y++ {
		for x := 0; x < s.side; x++ {
			if s.mask[y*s.side+x] {
				s.mapCoords = append(s.mapCoords, Offset{X: x, Y: y})
			}
		}
	}
}

func (s *Stamp) deriveBorder() {
	seen := make(map[Offset]bool)
	neighbors := [4]Offset{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	for _, c := range s.mapCoords {
		for _, d := range neighbors {
			n := Offset{X: c.X + d.X, Y: c.Y + d.Y}
			// The border is the box augmented by one on each side, so a
			// neighbor one step outside [0, side) on any axis still
			// qualifies.
			if n.X < -1 || n.Y < -1 || n.X > s.side || n.Y > s.side {
				continue
			}
			if s.at(n.X, n.Y) {
				continue
			}
			if seen[n] {
				continue
			}
			seen[n] = true
			s.border = append(s.border, n)
		}
	}
}

// Side returns the mask's side length.
func (s *Stamp) Side() int { return s.side }

// NonEmpty reports whether the stamp occupies at least one cell.
func (s *Stamp) NonEmpty() bool { return len(s.mapCoords) > 0 }

// MapCoords returns the iteration order over occupied sub-cells, as offsets
// from the stamp's top-left corner. The returned slice must not be mutated.
func (s *Stamp) MapCoords() []Offset { return s.mapCoords }

// Border returns the de-duplicated set of unoccupied cells immediately
// outside the mask, as offsets from the stamp's top-left corner. The
// returned slice must not be mutated.
func (s *Stamp) Border() []Offset { return s.border }
