package model

import "portal/shared/model"

const (
	TableName  = "guest_house_availabilities"
	EntityName = "availability"

	FieldID             = "id"
	FieldGuestHouse     = "guest_house"
	FieldLocation       = "location"
	FieldRoomType       = "room_type"
	FieldTotalRooms     = "total_rooms"
	FieldAvailableRooms = "available_rooms"
	FieldPricePerNight  = "price_per_night"
	FieldAmenities      = "amenities"
	FieldIsActive       = "is_active"
)

// Availability is one row of the room inventory ledger: a room class within
// a guest house. The (guest_house, room_type) pair is unique.
type Availability struct {
	ID             string  `db:"id"`
	GuestHouse     string  `db:"guest_house"`
	Location       string  `db:"location"`
	RoomType       string  `db:"room_type"`
	TotalRooms     int     `db:"total_rooms"`
	AvailableRooms int     `db:"available_rooms"`
	PricePerNight  float64 `db:"price_per_night"`
	Amenities      *string `db:"amenities"`
	IsActive       bool    `db:"is_active"`
	model.Metadata
}

// ResizeAvailable applies the ledger heuristic for a capacity change: the
// free count moves by the same delta as the total, clamped at zero. It is
// not reconciled against live bookings.
func ResizeAvailable(oldTotal, oldAvailable, newTotal int) int {
	available := oldAvailable + (newTotal - oldTotal)
	if available < 0 {
		return 0
	}

	return available
}
