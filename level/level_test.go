package level

import (
	"testing"

	"github.com/horazont/maniaclab/automaton"
)

func testPhysConfig() automaton.Config {
	return automaton.Config{
		FlowFriction:            0.25,
		FlowDamping:             0.5,
		ConvectionFriction:      0.1,
		HeatFlowFriction:        0.2,
		FogFlowFriction:         0.15,
		AirTempCoeffPerPressure: 1.0,
	}
}

func testLevelConfig(w, h int) Config {
	return Config{
		Width:             w,
		Height:            h,
		SubdivisionCount:  5,
		TimeSlice:         1.0 / 60.0,
		ExplosionLifetime: 20,
		FireTempRise:      5.0,
	}
}

func TestPhysConversion(t *testing.T) {
	lvl := NewLevel(testLevelConfig(10, 10), testPhysConfig(), 1, nil)
	got := lvl.phys(3.0, 4.0)
	want := Coord{X: 15, Y: 20}
	if got != want {
		t.Fatalf("phys(3,4) = %v, want %v", got, want)
	}
}

func TestRockFallsToFloor(t *testing.T) {
	lvl := NewLevel(testLevelConfig(50, 50), testPhysConfig(), 2, nil)
	ref := lvl.PlaceObject(KindRock, 25, 10, 1.0)

	for tick := 0; tick < 40; tick++ {
		lvl.Update()
		obj := lvl.objects.Get(ref)
		if obj == nil {
			t.Fatal("rock disappeared")
		}
		if obj.moving() {
			from := lvl.cellAt(obj.Movement.From)
			to := lvl.cellAt(obj.Movement.To)
			if to.Here != ref {
				t.Fatalf("tick %d: to.here should be the moving rock", tick)
			}
			if from.Here.Valid {
				t.Fatalf("tick %d: from.here should be empty mid-move", tick)
			}
			if from.ReservedBy != ref {
				t.Fatalf("tick %d: from.reserved_by should be the rock mid-move", tick)
			}
		}
	}

	obj := lvl.objects.Get(ref)
	if obj.Cell.Y != 49 {
		t.Fatalf("expected rock to settle on the floor at y=49, got y=%d", obj.Cell.Y)
	}
	wantPhy := lvl.phys(obj.X, obj.Y)
	if obj.Phy != wantPhy {
		t.Fatalf("phy invariant violated: obj.Phy=%v want %v", obj.Phy, wantPhy)
	}
}

func TestBombExplodesUnderFallingRock(t *testing.T) {
	lvl := NewLevel(testLevelConfig(50, 50), testPhysConfig(), 2, nil)
	rockRef := lvl.PlaceObject(KindRock, 25, 10, 1.0)
	lvl.PlaceObject(KindBomb, 25, 11, 1.0)

	exploded := false
	for tick := 0; tick < 10; tick++ {
		lvl.Update()
		if lvl.objects.Get(rockRef) == nil {
			t.Fatal("rock disappeared unexpectedly")
		}
		if occ := lvl.ObjectAt(25, 11); occ != nil && occ.Kind == KindExplosion {
			exploded = true
			break
		}
	}
	if !exploded {
		t.Fatal("expected the bomb to explode once the rock pressed down on it")
	}
}

func TestHorizFanProducesFlow(t *testing.T) {
	lvl := NewLevel(testLevelConfig(20, 20), testPhysConfig(), 2, nil)
	lvl.PlaceObject(KindHorizFan, 10, 10, 1.0)

	lvl.Update()

	phy := lvl.phys(10, 10)
	c, _ := lvl.automaton.At(phy.X, phy.Y)
	if c.Flow[0] <= 0 {
		t.Fatalf("expected positive X flow under the fan, got %v", c.Flow[0])
	}
}

func TestPlaceObjectEvictsPlayerAndFiresCallback(t *testing.T) {
	lvl := NewLevel(testLevelConfig(10, 10), testPhysConfig(), 1, nil)
	died := false
	lvl.OnPlayerDeath = func() { died = true }
	lvl.PlacePlayer(5, 5, 1.0)
	lvl.PlaceObject(KindWall, 5, 5, 1.0)

	if !died {
		t.Fatal("expected OnPlayerDeath to fire when the player's tile is overwritten")
	}
	if lvl.Player().Valid {
		t.Fatal("expected player reference to be invalidated after death")
	}
}

func TestNewLevelFillsAmbientAtmosphereWhenConfigured(t *testing.T) {
	cfg := testLevelConfig(4, 4)
	cfg.InitialPressure = 1.5
	cfg.InitialTemperature = 2.0
	lvl := NewLevel(cfg, testPhysConfig(), 1, nil)

	c, _ := lvl.automaton.At(0, 0)
	if c.Pressure != 1.5 {
		t.Fatalf("expected automaton to start at the configured initial pressure, got %v", c.Pressure)
	}
	if c.Heat == 0 {
		t.Fatal("expected non-zero heat from a non-zero initial temperature")
	}
}

func TestNewLevelLeavesGridAtZeroWithoutInitialAtmosphere(t *testing.T) {
	lvl := NewLevel(testLevelConfig(4, 4), testPhysConfig(), 1, nil)

	c, _ := lvl.automaton.At(0, 0)
	if c.Pressure != 0 || c.Heat != 0 {
		t.Fatalf("expected a fresh grid with no configured atmosphere to start at zero, got %+v", c)
	}
}

func TestAddLargeExplosionSpawnsFootprint(t *testing.T) {
	lvl := NewLevel(testLevelConfig(10, 10), testPhysConfig(), 1, nil)
	lvl.AddLargeExplosion(2, 2, 2, 1)

	if lvl.ObjectAt(2, 2) == nil || lvl.ObjectAt(2, 2).Kind != KindExplosion {
		t.Fatal("expected an explosion tile at (2,2)")
	}
	if lvl.ObjectAt(3, 2) == nil || lvl.ObjectAt(3, 2).Kind != KindExplosion {
		t.Fatal("expected an explosion tile at (3,2)")
	}
}
