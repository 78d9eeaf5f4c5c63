package persist

import (
	"github.com/google/uuid"

	"github.com/horazont/maniaclab/level"
)

// builtinTileUUIDs assigns a fixed UUID to each persistable builtin object
// kind. Explosion is deliberately excluded: it is a transient effect
// (self-destructs after EXPLOSION_BLOCK_LIFETIME ticks) rather than level
// content, so it has no place in a saved level file.
var builtinTileUUIDs = map[level.ObjectKind]uuid.UUID{
	level.KindWall:         uuid.MustParse("5c3b6f0a-2f0a-4f1a-9c3a-000000000001"),
	level.KindSafeWall:     uuid.MustParse("5c3b6f0a-2f0a-4f1a-9c3a-000000000002"),
	level.KindRock:         uuid.MustParse("5c3b6f0a-2f0a-4f1a-9c3a-000000000003"),
	level.KindDirtObject:   uuid.MustParse("5c3b6f0a-2f0a-4f1a-9c3a-000000000004"),
	level.KindBomb:         uuid.MustParse("5c3b6f0a-2f0a-4f1a-9c3a-000000000005"),
	level.KindPlayer:       uuid.MustParse("5c3b6f0a-2f0a-4f1a-9c3a-000000000006"),
	level.KindHorizFan:     uuid.MustParse("5c3b6f0a-2f0a-4f1a-9c3a-000000000007"),
	level.KindVertFan:      uuid.MustParse("5c3b6f0a-2f0a-4f1a-9c3a-000000000008"),
	level.KindFlamethrower: uuid.MustParse("5c3b6f0a-2f0a-4f1a-9c3a-000000000009"),
}

// defaultInitialTemperature is used when a loaded cell's argv carries no
// ArgInitialTemperature entry.
const defaultInitialTemperature = 1.0

func argInitialTemperature(argv []TileArg) float64 {
	for _, a := range argv {
		if a.Type == ArgInitialTemperature {
			return a.FVal
		}
	}
	return defaultInitialTemperature
}

// BuiltinTileset returns a Tileset pre-populated with the concrete object
// catalogue supplemented from src/logic/{BombObject,ExplosionObject,
// GameObject}.{cpp,hpp}, one fixed UUID per kind.
func BuiltinTileset() *Tileset {
	ts := NewTileset()
	for kind, id := range builtinTileUUIDs {
		kind := kind
		factory := func(lvl *level.Level, x, y int, argv []TileArg) level.ObjectRef {
			return lvl.PlaceObject(kind, x, y, argInitialTemperature(argv))
		}
		if err := ts.RegisterKind(id, kind, factory); err != nil {
			// Only reachable if builtinTileUUIDs itself has a collision,
			// which would be a programming error in this file.
			panic(err)
		}
	}
	return ts
}
