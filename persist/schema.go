// Package persist implements the level load/save round trip as a protobuf
// shaped schema, following libmaniaclab/logic/{tileset,editor_level}.
// {hpp,cpp}: a UUID-keyed tile factory registry and a flat, row-major
// level schema.
//
// Generating real protobuf bindings would require running protoc /
// protoc-gen-go, which this module's build process forbids. The schema
// below keeps that message layout (tileset, tile UUID, an argv list
// including the well-known INITIAL_TEMPERATURE arg) and is serialized with
// encoding/gob instead, so a future swap to generated protobuf types only
// touches this package. TileArg carries only float and point values.
package persist

import "github.com/google/uuid"

// TileArgType tags the oneof alternative carried by a TileArg, mirroring
// mlio::TileArgType from the original schema.
type TileArgType int32

const (
	ArgUnspecified TileArgType = iota
	// ArgInitialTemperature carries a float seed temperature, applied the
	// same way Level.PlaceObject's initialTemperature parameter is.
	ArgInitialTemperature
	// ArgPoint carries an (x, y) pair, for args like a fan's flow direction.
	ArgPoint
)

// PointValue is the oneof's point alternative.
type PointValue struct {
	X, Y int32
}

// TileArg is one entry of a tile's argv multimap (mlio::TileArgv in the
// original), carrying exactly one of its value fields depending on Type.
// Only a float (FVal) and a point (PVal) alternative exist; string,
// integer, boolean and byte values cannot be stored.
type TileArg struct {
	Type  TileArgType
	FVal  float64
	PVal  PointValue
}

// WireCell is one coarse cell of a saved level. Tile is the zero UUID when
// the cell is empty; Tileset names which Tileset resolved it, reserved for
// multi-tileset level files.
type WireCell struct {
	Tileset string
	Tile    uuid.UUID
	Argv    []TileArg
}

// WireLevel is the flat, row-major serialization of a Level's coarse grid.
type WireLevel struct {
	Width, Height int32
	Cells         []WireCell
}
