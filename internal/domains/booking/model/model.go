package model

import (
	"fmt"
	"time"

	userModel "portal/internal/domains/user/model"
	"portal/shared/model"
)

const (
	TableName  = "guest_house_bookings"
	EntityName = "booking"

	FieldID             = "id"
	FieldUserID         = "user_id"
	FieldAvailabilityID = "availability_id"
	FieldGuestHouse     = "guest_house"
	FieldLocation       = "location"
	FieldRoomType       = "room_type"
	FieldCheckIn        = "check_in"
	FieldCheckOut       = "check_out"
	FieldGuests         = "guests"
	FieldPurpose        = "purpose"
	FieldSpecialRequest = "special_request"
	FieldStatus         = "status"
	FieldTotalAmount    = "total_amount"
	FieldRejectedReason = "rejected_reason"
)

// Booking references its ledger row by id; guest house, location and room
// type are denormalized onto the row so listings survive later inventory
// edits. The reference is nullable: removing a retired ledger row clears it
// on the bookings that pointed there, and the denormalized columns keep the
// history readable.
type Booking struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	AvailabilityID *string   `db:"availability_id"`
	GuestHouse     string    `db:"guest_house"`
	Location       string    `db:"location"`
	RoomType       string    `db:"room_type"`
	CheckIn        time.Time `db:"check_in"`
	CheckOut       time.Time `db:"check_out"`
	Guests         int       `db:"guests"`
	Purpose        string    `db:"purpose"`
	SpecialRequest *string   `db:"special_request"`
	Status         string    `db:"status"`
	TotalAmount    *float64  `db:"total_amount"`
	RejectedReason *string   `db:"rejected_reason"`
	RequesterName  string    `db:"requester_name"  table:"users" column:"name"`
	RequesterEmail string    `db:"requester_email" table:"users" column:"email"`
	RequesterPhone *string   `db:"requester_phone" table:"users" column:"phone"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return fmt.Sprintf("LEFT JOIN %s ON %s.%s = %s.%s",
		userModel.TableName,
		userModel.TableName, userModel.FieldID,
		TableName, FieldUserID,
	)
}
