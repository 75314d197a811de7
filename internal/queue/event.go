// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingDecidedEvent is published when an admin approves or rejects
// a booking.  It carries enough information for downstream consumers
// to log or notify without querying the primary database.
type BookingDecidedEvent struct {
	BookingID uint64 `json:"booking_id"`
	Reference string `json:"reference"`
	RoomID    uint64 `json:"room_id"`
	UserID    uint64 `json:"user_id"`
	Status    string `json:"status"` // "approved" or "rejected"
	Reason    string `json:"reason,omitempty"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	DecidedAt string `json:"decided_at"`
}
