package persist

import (
	"github.com/google/uuid"

	"github.com/horazont/maniaclab/level"
)

// LoadLevel instantiates one object per non-empty cell of wl into lvl,
// mirroring editor_level.cpp's load(): cells are walked row-major, each
// resolved through ts by its tile UUID. A DomainMiss from an unregistered
// UUID rolls back every placement made earlier in this call before the
// error is returned, so a failed load never leaves a half-populated level.
func LoadLevel(lvl *level.Level, ts *Tileset, wl WireLevel) error {
	type placement struct{ x, y int }
	var placed []placement

	rollback := func() {
		for _, p := range placed {
			lvl.RemoveAt(p.x, p.y)
		}
	}

	for i, cell := range wl.Cells {
		if cell.Tile == uuid.Nil {
			continue
		}
		x := i % int(wl.Width)
		y := i / int(wl.Width)
		if _, err := ts.MakeTile(cell.Tile, lvl, x, y, cell.Argv); err != nil {
			rollback()
			return err
		}
		placed = append(placed, placement{x: x, y: y})
	}
	return nil
}

// SaveLevel walks lvl's width x height coarse grid row-major and encodes
// each occupied tile back to its registered UUID via ts, mirroring
// editor_level.cpp's save(). An object whose kind was never bound through
// Tileset.RegisterKind is skipped rather than failing the whole save,
// since it has no UUID to serialize it under.
func SaveLevel(lvl *level.Level, ts *Tileset, width, height int) WireLevel {
	wl := WireLevel{
		Width:  int32(width),
		Height: int32(height),
		Cells:  make([]WireCell, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			obj := lvl.ObjectAt(x, y)
			idx := y*width + x
			if obj == nil {
				continue
			}
			id, ok := ts.IDForKind(obj.Kind)
			if !ok {
				continue
			}
			wl.Cells[idx] = WireCell{
				Tile: id,
				Argv: []TileArg{{Type: ArgInitialTemperature, FVal: obj.Frame.OwnTemperature}},
			}
		}
	}
	return wl
}
