package model

import "time"

// Room represents a bookable room on a floor.  A room is immutable
// once created except through the explicit admin edit endpoint.
// Bookings reference rooms by ID; the scheduling core scans only a
// single room's bookings when checking for conflicts.
//
// Fields:
//  ID          – primary key identifier.
//  FloorID     – parent floor.
//  Name        – room name, unique per floor.
//  Capacity    – seating capacity.
//  Description – optional free-text description.
//  CreatedAt   – creation timestamp.
type Room struct {
	ID          uint64    // rooms.id
	FloorID     uint64    // rooms.floor_id
	Name        string    // rooms.name
	Capacity    uint32    // rooms.capacity
	Description *string   // rooms.description (nullable)
	CreatedAt   time.Time // rooms.created_at
}
