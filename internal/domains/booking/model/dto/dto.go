package dto

import (
	"time"

	availabilityModel "portal/internal/domains/availability/model"
	"portal/internal/domains/booking/model"
	"portal/shared"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	gModel "portal/shared/model"
	"portal/shared/timezone"

	"github.com/google/uuid"
)

type SubmitBookingRequest struct {
	AvailabilityID string  `json:"availability_id" validate:"required,uuid"`
	CheckIn        string  `json:"check_in"        validate:"required,datetime=2006-01-02"`
	CheckOut       string  `json:"check_out"       validate:"required,datetime=2006-01-02"`
	Guests         int     `json:"guests"          validate:"required,min=1"`
	Purpose        string  `json:"purpose"         validate:"required,max=500"`
	SpecialRequest *string `json:"special_request" validate:"omitempty,max=1000"`
}

// ToModel copies guest house, location and room type from the ledger row so
// the booking keeps its original description even after inventory edits.
func (s *SubmitBookingRequest) ToModel(availability availabilityModel.Availability, userID string) model.Booking {
	checkIn, _ := time.Parse(constant.DateOnlyFormat, s.CheckIn)
	checkOut, _ := time.Parse(constant.DateOnlyFormat, s.CheckOut)

	return model.Booking{
		ID:             uuid.NewString(),
		UserID:         userID,
		AvailabilityID: &availability.ID,
		GuestHouse:     availability.GuestHouse,
		Location:       availability.Location,
		RoomType:       availability.RoomType,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Guests:         s.Guests,
		Purpose:        s.Purpose,
		SpecialRequest: s.SpecialRequest,
		Status:         constant.BookingStatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  userID,
			ModifiedBy: userID,
		},
	}
}

type ApproveBookingRequest struct {
	TotalAmount *float64 `json:"total_amount" validate:"omitempty,min=0"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type BookingResponse struct {
	ID             string   `json:"id"`
	UserID         string   `json:"user_id"`
	AvailabilityID *string  `json:"availability_id,omitempty"`
	GuestHouse     string   `json:"guest_house"`
	Location       string   `json:"location"`
	RoomType       string   `json:"room_type"`
	CheckIn        string   `json:"check_in"`
	CheckOut       string   `json:"check_out"`
	Guests         int      `json:"guests"`
	Purpose        string   `json:"purpose"`
	SpecialRequest *string  `json:"special_request,omitempty"`
	Status         string   `json:"status"`
	TotalAmount    *float64 `json:"total_amount,omitempty"`
	RejectedReason *string  `json:"rejected_reason,omitempty"`
	RequesterName  string   `json:"requester_name"`
	RequesterEmail string   `json:"requester_email"`
	RequesterPhone *string  `json:"requester_phone,omitempty"`
	gDto.Metadata
}

func (b *BookingResponse) FromModel(model model.Booking) {
	b.ID = model.ID
	b.UserID = model.UserID
	b.AvailabilityID = model.AvailabilityID
	b.GuestHouse = model.GuestHouse
	b.Location = model.Location
	b.RoomType = model.RoomType
	b.CheckIn = model.CheckIn.Format(constant.DateOnlyFormat)
	b.CheckOut = model.CheckOut.Format(constant.DateOnlyFormat)
	b.Guests = model.Guests
	b.Purpose = model.Purpose
	b.SpecialRequest = model.SpecialRequest
	b.Status = model.Status
	b.TotalAmount = model.TotalAmount
	b.RejectedReason = model.RejectedReason
	b.RequesterName = model.RequesterName
	b.RequesterEmail = model.RequesterEmail
	b.RequesterPhone = model.RequesterPhone
	b.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings      []BookingResponse `json:"bookings"`
	TotalData     int               `json:"total_data"`
	TotalPage     int               `json:"total_page"`
	TotalPending  int               `json:"total_pending"`
	TotalApproved int               `json:"total_approved"`
	TotalRejected int               `json:"total_rejected"`
}

func (g *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	g.TotalData = totalData
	g.TotalPage = shared.CalculateTotalPage(totalData, limit)

	g.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		g.Bookings[i].FromModel(mod)
	}
}

type BookingDecisionEvent struct {
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	GuestHouse string    `json:"guest_house"`
	RoomType   string    `json:"room_type"`
	Status     string    `json:"status"`
	Reason     *string   `json:"reason,omitempty"`
	DecidedAt  time.Time `json:"decided_at"`
}
