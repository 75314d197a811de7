package model

import "time"

// Building represents a physical building containing one or more
// floors.  Buildings sit at the top of the location hierarchy
// (building -> floor -> room) and carry nothing beyond a display
// name.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique building name.
//  CreatedAt – creation timestamp.
type Building struct {
	ID        uint64    // buildings.id
	Name      string    // buildings.name
	CreatedAt time.Time // buildings.created_at
}

// Floor represents a single floor within a building.  Rooms belong
// to exactly one floor.  FloorNumber is the ordinal used for
// display and sorting; it is not required to be contiguous.
//
// Fields:
//  ID          – primary key identifier.
//  BuildingID  – parent building.
//  FloorNumber – ordinal of the floor within the building.
//  CreatedAt   – creation timestamp.
type Floor struct {
	ID          uint64    // floors.id
	BuildingID  uint64    // floors.building_id
	FloorNumber int32     // floors.floor_number
	CreatedAt   time.Time // floors.created_at
}
