package stamp

import "testing"

func TestNewSquareMapCoords(t *testing.T) {
	s := NewSquare(2)
	if !s.NonEmpty() {
		t.Fatal("expected non-empty stamp")
	}
	if len(s.MapCoords()) != 4 {
		t.Fatalf("expected 4 occupied cells, got %d", len(s.MapCoords()))
	}
}

func TestNewSquareBorder(t *testing.T) {
	s := NewSquare(2)
	border := s.Border()

	// A 2x2 fully occupied block has a border of 8 cells: 2 above, 2
	// below, 2 left, 2 right (no diagonals, since border cells come from
	// 4-neighbors of occupied cells).
	if len(border) != 8 {
		t.Fatalf("expected 8 border cells, got %d: %v", len(border), border)
	}

	seen := make(map[Offset]bool)
	for _, o := range border {
		if seen[o] {
			t.Fatalf("border contains duplicate offset %v", o)
		}
		seen[o] = true
	}
}

func TestBorderExcludesOccupiedCells(t *testing.T) {
	s := NewSquare(3)
	occupied := make(map[Offset]bool)
	for _, o := range s.MapCoords() {
		occupied[o] = true
	}
	for _, o := range s.Border() {
		if occupied[o] {
			t.Fatalf("border offset %v is also an occupied cell", o)
		}
	}
}

func TestEmptyMaskHasNoBorder(t *testing.T) {
	mask := make([]bool, 9)
	s := New(3, mask)
	if s.NonEmpty() {
		t.Fatal("expected empty stamp")
	}
	if len(s.Border()) != 0 {
		t.Fatalf("expected no border for empty stamp, got %v", s.Border())
	}
}

func TestSingleCellBorder(t *testing.T) {
	mask := []bool{
		false, false, false,
		false, true, false,
		false, false, false,
	}
	s := New(3, mask)
	border := s.Border()
	if len(border) != 4 {
		t.Fatalf("expected 4-neighbor border for a single cell, got %d: %v", len(border), border)
	}
}

func TestRectStamp(t *testing.T) {
	s := NewRect(3, 1)
	if len(s.MapCoords()) != 3 {
		t.Fatalf("expected 3 occupied cells for a 3x1 rect, got %d", len(s.MapCoords()))
	}
}
