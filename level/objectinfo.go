package level

import "github.com/horazont/maniaclab/stamp"

// ObjectKind tags the concrete variant a GameObject plays, used to select
// its lifecycle hooks through the dispatch table in hooks.go. This is the
// "tagged variant of concrete object kinds" stand-in for virtual dispatch.
type ObjectKind int

const (
	KindWall ObjectKind = iota
	KindSafeWall
	KindRock
	KindDirtObject
	KindBomb
	KindPlayer
	KindExplosion
	KindHorizFan
	KindVertFan
	KindFlamethrower
)

func (k ObjectKind) String() string {
	switch k {
	case KindWall:
		return "Wall"
	case KindSafeWall:
		return "SafeWall"
	case KindRock:
		return "Rock"
	case KindDirtObject:
		return "DirtObject"
	case KindBomb:
		return "Bomb"
	case KindPlayer:
		return "Player"
	case KindExplosion:
		return "Explosion"
	case KindHorizFan:
		return "HorizFan"
	case KindVertFan:
		return "VertFan"
	case KindFlamethrower:
		return "Flamethrower"
	default:
		return "Unknown"
	}
}

// ObjectInfo is the static, immutable descriptor for an object class:
// behavior flags, heat capacity, and footprint. BuiltinObjectInfo builds a
// new one on each call, so objects of the same kind do not share a pointer.
type ObjectInfo struct {
	Kind              ObjectKind
	IsBlocking        bool
	IsDestructible    bool
	IsGravityAffected bool
	IsMovable         bool
	IsRollable        bool
	IsSticky          bool
	TempCoeff         float64
	Stamp             *stamp.Stamp
}

// TempCoefficient implements automaton.ObjectTempProvider.
func (info *ObjectInfo) TempCoefficient() float64 { return info.TempCoeff }

// BuiltinObjectInfo returns the static descriptor for one of the concrete
// object kinds supplemented from the original source's object catalogue
// (src/logic/{BombObject,ExplosionObject,GameObject}.{cpp,hpp}).
func BuiltinObjectInfo(kind ObjectKind) *ObjectInfo {
	switch kind {
	case KindWall:
		return &ObjectInfo{Kind: kind, IsBlocking: true, TempCoeff: 50, Stamp: stamp.NewSquare(1)}
	case KindSafeWall:
		return &ObjectInfo{Kind: kind, IsBlocking: true, TempCoeff: 50, Stamp: stamp.NewSquare(1)}
	case KindRock:
		return &ObjectInfo{Kind: kind, IsBlocking: true, IsGravityAffected: true, IsMovable: true, IsRollable: true, TempCoeff: 20, Stamp: stamp.NewSquare(1)}
	case KindDirtObject:
		return &ObjectInfo{Kind: kind, IsBlocking: true, IsGravityAffected: true, IsMovable: true, IsDestructible: true, TempCoeff: 10, Stamp: stamp.NewSquare(1)}
	case KindBomb:
		return &ObjectInfo{Kind: kind, IsBlocking: true, IsGravityAffected: true, IsMovable: true, IsDestructible: true, TempCoeff: 5, Stamp: stamp.NewSquare(1)}
	case KindPlayer:
		return &ObjectInfo{Kind: kind, IsBlocking: true, IsMovable: true, TempCoeff: 8, Stamp: stamp.NewSquare(1)}
	case KindExplosion:
		return &ObjectInfo{Kind: kind, IsBlocking: false, TempCoeff: 1, Stamp: stamp.NewSquare(1)}
	case KindHorizFan, KindVertFan:
		return &ObjectInfo{Kind: kind, IsBlocking: true, TempCoeff: 15, Stamp: stamp.NewSquare(1)}
	case KindFlamethrower:
		return &ObjectInfo{Kind: kind, IsBlocking: false, TempCoeff: 1, Stamp: stamp.NewSquare(1)}
	default:
		return &ObjectInfo{Kind: kind, Stamp: stamp.NewSquare(1)}
	}
}
