package persist

import (
	"github.com/google/uuid"

	"github.com/horazont/maniaclab/level"
	"github.com/horazont/maniaclab/mlerr"
)

// TileFactory instantiates one object at (x, y) from its argv, returning
// the reference the object was spawned at.
type TileFactory func(lvl *level.Level, x, y int, argv []TileArg) level.ObjectRef

// Tileset is the UUID-keyed object factory registry from
// libmaniaclab/logic/tileset.hpp's SimpleTileset: register_tile panics in
// the original (std::runtime_error) on a duplicate id; here Register
// returns an *mlerr.InvalidInput instead, since registration happens at
// runtime from data a caller may not control.
type Tileset struct {
	factories map[uuid.UUID]TileFactory
	kindIDs   map[level.ObjectKind]uuid.UUID
}

// NewTileset returns an empty registry.
func NewTileset() *Tileset {
	return &Tileset{
		factories: make(map[uuid.UUID]TileFactory),
		kindIDs:   make(map[level.ObjectKind]uuid.UUID),
	}
}

// Register binds id to factory. It fails with *mlerr.InvalidInput if id is
// already registered, mirroring SimpleTileset::register_tile's duplicate
// check.
func (t *Tileset) Register(id uuid.UUID, factory TileFactory) error {
	if _, exists := t.factories[id]; exists {
		return &mlerr.InvalidInput{Op: "persist.Tileset.Register", Err: errDuplicateUUID(id)}
	}
	t.factories[id] = factory
	return nil
}

// RegisterKind is Register plus a reverse Kind -> UUID binding SaveLevel
// uses to serialize an object back to its tile UUID. Builtin object kinds
// use this; custom/scripted tiles registered only through Register are not
// round-trippable by SaveLevel.
func (t *Tileset) RegisterKind(id uuid.UUID, kind level.ObjectKind, factory TileFactory) error {
	if err := t.Register(id, factory); err != nil {
		return err
	}
	t.kindIDs[kind] = id
	return nil
}

// MakeTile instantiates the object registered under id. It fails with
// *mlerr.DomainMiss if no tile is registered under that UUID, mirroring
// Tileset::make_tile's lookup failure.
func (t *Tileset) MakeTile(id uuid.UUID, lvl *level.Level, x, y int, argv []TileArg) (level.ObjectRef, error) {
	factory, ok := t.factories[id]
	if !ok {
		return level.ObjectRef{}, &mlerr.DomainMiss{Op: "persist.Tileset.MakeTile", UUID: id.String()}
	}
	return factory(lvl, x, y, argv), nil
}

// IDForKind returns the UUID RegisterKind bound to kind, and whether one
// was found.
func (t *Tileset) IDForKind(kind level.ObjectKind) (uuid.UUID, bool) {
	id, ok := t.kindIDs[kind]
	return id, ok
}

type duplicateUUIDError struct{ id uuid.UUID }

func (e *duplicateUUIDError) Error() string { return "uuid " + e.id.String() + " already registered" }

func errDuplicateUUID(id uuid.UUID) error { return &duplicateUUIDError{id: id} }
