package dto

import (
	"portal/internal/domains/availability/model"
	"portal/shared"
	gDto "portal/shared/dto"
	gModel "portal/shared/model"
	"portal/shared/timezone"

	"github.com/google/uuid"
)

type CreateAvailabilityRequest struct {
	GuestHouse    string  `json:"guest_house"     validate:"required,max=100"`
	Location      string  `json:"location"        validate:"required,max=100"`
	RoomType      string  `json:"room_type"       validate:"required,oneof=Single Double Triple Suite Deluxe Executive"`
	TotalRooms    int     `json:"total_rooms"     validate:"required,min=1"`
	PricePerNight float64 `json:"price_per_night" validate:"omitempty,min=0"`
	Amenities     *string `json:"amenities"       validate:"omitempty,max=1000"`
}

// ToModel opens the ledger row with every room free.
func (c *CreateAvailabilityRequest) ToModel(user string) model.Availability {
	return model.Availability{
		ID:             uuid.NewString(),
		GuestHouse:     c.GuestHouse,
		Location:       c.Location,
		RoomType:       c.RoomType,
		TotalRooms:     c.TotalRooms,
		AvailableRooms: c.TotalRooms,
		PricePerNight:  c.PricePerNight,
		Amenities:      c.Amenities,
		IsActive:       true,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateAvailabilityRequest struct {
	GuestHouse    string   `db:"guest_house"     json:"guest_house"     validate:"omitempty,max=100"`
	Location      string   `db:"location"        json:"location"        validate:"omitempty,max=100"`
	RoomType      string   `db:"room_type"       json:"room_type"       validate:"omitempty,oneof=Single Double Triple Suite Deluxe Executive"`
	TotalRooms    *int     `db:"total_rooms"     json:"total_rooms"     validate:"omitempty,min=1"`
	PricePerNight *float64 `db:"price_per_night" json:"price_per_night" validate:"omitempty,min=0"`
	Amenities     *string  `db:"amenities"       json:"amenities"       validate:"omitempty,max=1000"`
}

type ToggleAvailabilityRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type AvailabilityResponse struct {
	ID             string  `json:"id"`
	GuestHouse     string  `json:"guest_house"`
	Location       string  `json:"location"`
	RoomType       string  `json:"room_type"`
	TotalRooms     int     `json:"total_rooms"`
	AvailableRooms int     `json:"available_rooms"`
	PricePerNight  float64 `json:"price_per_night"`
	Amenities      *string `json:"amenities,omitempty"`
	IsActive       bool    `json:"is_active"`
	gDto.Metadata
}

func (a *AvailabilityResponse) FromModel(model model.Availability) {
	a.ID = model.ID
	a.GuestHouse = model.GuestHouse
	a.Location = model.Location
	a.RoomType = model.RoomType
	a.TotalRooms = model.TotalRooms
	a.AvailableRooms = model.AvailableRooms
	a.PricePerNight = model.PricePerNight
	a.Amenities = model.Amenities
	a.IsActive = model.IsActive
	a.Metadata.FromModel(model.Metadata)
}

type GetAvailabilitiesResponse struct {
	Availabilities []AvailabilityResponse `json:"availabilities"`
	TotalData      int                    `json:"total_data"`
	TotalPage      int                    `json:"total_page"`
	TotalActive    int                    `json:"total_active"`
	TotalInactive  int                    `json:"total_inactive"`
}

func (g *GetAvailabilitiesResponse) FromModels(models []model.Availability, totalData, limit int) {
	g.TotalData = totalData
	g.TotalPage = shared.CalculateTotalPage(totalData, limit)

	g.Availabilities = make([]AvailabilityResponse, len(models))
	for i, mod := range models {
		g.Availabilities[i].FromModel(mod)
	}
}
