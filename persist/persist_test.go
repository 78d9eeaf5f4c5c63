package persist

import (
	"testing"

	"github.com/google/uuid"

	"github.com/horazont/maniaclab/automaton"
	"github.com/horazont/maniaclab/level"
)

func testLevel(t *testing.T) *level.Level {
	t.Helper()
	cfg := level.Config{
		Width:             10,
		Height:            10,
		SubdivisionCount:  5,
		TimeSlice:         1.0 / 60.0,
		ExplosionLifetime: 20,
		FireTempRise:      5.0,
	}
	physCfg := automaton.Config{
		FlowFriction:            0.25,
		FlowDamping:             0.5,
		ConvectionFriction:      0.1,
		HeatFlowFriction:        0.2,
		FogFlowFriction:         0.15,
		AirTempCoeffPerPressure: 1.0,
	}
	return level.NewLevel(cfg, physCfg, 1, nil)
}

func TestRegisterRejectsDuplicateUUID(t *testing.T) {
	ts := NewTileset()
	id := uuid.New()
	factory := func(lvl *level.Level, x, y int, argv []TileArg) level.ObjectRef {
		return lvl.PlaceObject(level.KindWall, x, y, 1.0)
	}
	if err := ts.Register(id, factory); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := ts.Register(id, factory); err == nil {
		t.Fatal("expected duplicate UUID registration to fail")
	}
}

func TestMakeTileUnknownUUIDIsDomainMiss(t *testing.T) {
	ts := NewTileset()
	lvl := testLevel(t)
	_, err := ts.MakeTile(uuid.New(), lvl, 0, 0, nil)
	if err == nil {
		t.Fatal("expected an error for an unregistered UUID")
	}
}

func TestLoadLevelPlacesBuiltinTiles(t *testing.T) {
	ts := BuiltinTileset()
	lvl := testLevel(t)

	rockID, _ := ts.IDForKind(level.KindRock)
	wallID, _ := ts.IDForKind(level.KindWall)

	wl := WireLevel{
		Width:  10,
		Height: 10,
		Cells:  make([]WireCell, 100),
	}
	wl.Cells[0*10+2] = WireCell{Tile: wallID}
	wl.Cells[1*10+3] = WireCell{Tile: rockID, Argv: []TileArg{{Type: ArgInitialTemperature, FVal: 2.5}}}

	if err := LoadLevel(lvl, ts, wl); err != nil {
		t.Fatalf("LoadLevel failed: %v", err)
	}
	if lvl.ObjectAt(2, 0) == nil || lvl.ObjectAt(2, 0).Kind != level.KindWall {
		t.Fatal("expected a wall at (2,0)")
	}
	if lvl.ObjectAt(3, 1) == nil || lvl.ObjectAt(3, 1).Kind != level.KindRock {
		t.Fatal("expected a rock at (3,1)")
	}
}

func TestLoadLevelRollsBackOnDomainMiss(t *testing.T) {
	ts := BuiltinTileset()
	lvl := testLevel(t)

	wallID, _ := ts.IDForKind(level.KindWall)

	wl := WireLevel{
		Width:  10,
		Height: 10,
		Cells:  make([]WireCell, 100),
	}
	wl.Cells[0*10+0] = WireCell{Tile: wallID}
	wl.Cells[0*10+5] = WireCell{Tile: uuid.New()} // unregistered

	err := LoadLevel(lvl, ts, wl)
	if err == nil {
		t.Fatal("expected LoadLevel to fail on the unregistered UUID")
	}
	if lvl.ObjectAt(0, 0) != nil {
		t.Fatal("expected the earlier placement to be rolled back")
	}
}

func TestSaveLevelRoundTripsThroughGob(t *testing.T) {
	ts := BuiltinTileset()
	lvl := testLevel(t)
	lvl.PlaceObject(level.KindWall, 1, 1, 1.0)
	lvl.PlaceObject(level.KindRock, 4, 4, 1.0)

	wl := SaveLevel(lvl, ts, 10, 10)

	data, err := Marshal(wl)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	lvl2 := testLevel(t)
	if err := LoadLevel(lvl2, ts, decoded); err != nil {
		t.Fatalf("LoadLevel of round-tripped data failed: %v", err)
	}
	if lvl2.ObjectAt(1, 1) == nil || lvl2.ObjectAt(1, 1).Kind != level.KindWall {
		t.Fatal("expected a wall at (1,1) after round trip")
	}
	if lvl2.ObjectAt(4, 4) == nil || lvl2.ObjectAt(4, 4).Kind != level.KindRock {
		t.Fatal("expected a rock at (4,4) after round trip")
	}
}
