package world

import "math"

// InfomarkID identifies one map annotation within a World snapshot.
type InfomarkID uint32

// InvalidInfomarkID is the sentinel for "no infomark".
const InvalidInfomarkID InfomarkID = math.MaxUint32

// Valid reports whether the id refers to an infomark.
func (id InfomarkID) Valid() bool { return id != InvalidInfomarkID }

// InfomarkType is the rendering shape of an annotation.
type InfomarkType uint8

const (
	InfomarkText InfomarkType = iota
	InfomarkLine
	InfomarkArrow
)

// InfomarkClass is the semantic category of an annotation.
type InfomarkClass uint8

const (
	InfomarkGeneric InfomarkClass = iota
	InfomarkHerb
	InfomarkRiver
	InfomarkPlace
	InfomarkMob
	InfomarkComment
	InfomarkRoad
	InfomarkObject
	InfomarkAction
	InfomarkLocality
)

// InfomarkScale converts room-grid coordinates to infomark coordinates;
// annotations are positioned at sub-room resolution on the XY plane.
const InfomarkScale = 100

// RawInfomark is a free-floating map annotation: a label, line, or
// arrow drawn over the room grid.
type RawInfomark struct {
	ID            InfomarkID
	Type          InfomarkType
	Class         InfomarkClass
	Text          string
	Position1     Coordinate
	Position2     Coordinate
	RotationAngle int
}
