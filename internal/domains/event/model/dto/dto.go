package dto

import (
	"mime/multipart"
	"time"

	"portal/internal/domains/event/model"
	"portal/shared"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	gModel "portal/shared/model"
	"portal/shared/timezone"

	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Title       string                `json:"title"        validate:"required,min=3,max=200"`
	Description string                `json:"description"  validate:"required"`
	EventDate   string                `json:"event_date"   validate:"required,datetime=2006-01-02"`
	Location    string                `json:"location"     validate:"required,max=200"`
	IsFeatured  bool                  `json:"is_featured"`
	IsPublished bool                  `json:"is_published"`
	Image       *multipart.FileHeader `json:"image"        swaggerignore:"true" validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=5"`
	ImageFile   multipart.File        `json:"-"`
}

func (c *CreateEventRequest) ToModel(user, imageURL string) model.Event {
	eventDate, _ := time.Parse(constant.DateOnlyFormat, c.EventDate)

	event := model.Event{
		ID:          uuid.NewString(),
		Title:       c.Title,
		Description: c.Description,
		EventDate:   eventDate,
		Location:    c.Location,
		IsFeatured:  c.IsFeatured,
		IsPublished: c.IsPublished,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}

	if imageURL != constant.Empty {
		event.ImageURL = &imageURL
	}

	return event
}

type UpdateEventRequest struct {
	Title       string                `db:"title"        json:"title"        validate:"omitempty,min=3,max=200"`
	Description string                `db:"description"  json:"description"  validate:"omitempty"`
	Location    string                `db:"location"     json:"location"     validate:"omitempty,max=200"`
	EventDate   string                `json:"event_date"                     validate:"omitempty,datetime=2006-01-02"`
	IsFeatured  *bool                 `db:"is_featured"  json:"is_featured"  validate:"omitempty"`
	IsPublished *bool                 `db:"is_published" json:"is_published" validate:"omitempty"`
	Image       *multipart.FileHeader `json:"image"      swaggerignore:"true" validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=5"`
	ImageFile   multipart.File        `json:"-"`
}

type UploadEventImageRequest struct {
	Caption      *string               `json:"caption"       validate:"omitempty,max=300"`
	DisplayOrder int                   `json:"display_order" validate:"omitempty,min=0"`
	Image        *multipart.FileHeader `json:"image"         swaggerignore:"true" validate:"required,mimetypes=image/png image/jpg image/jpeg,maxfilesize=5"`
	ImageFile    multipart.File        `json:"-"`
}

func (u *UploadEventImageRequest) ToModel(eventID, imageURL, user string) model.EventImage {
	return model.EventImage{
		ID:           uuid.NewString(),
		EventID:      eventID,
		ImageURL:     imageURL,
		Caption:      u.Caption,
		DisplayOrder: u.DisplayOrder,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type EventImageResponse struct {
	ID           string  `json:"id"`
	ImageURL     string  `json:"image_url"`
	Caption      *string `json:"caption,omitempty"`
	DisplayOrder int     `json:"display_order"`
}

func (e *EventImageResponse) FromModel(model model.EventImage) {
	e.ID = model.ID
	e.ImageURL = model.ImageURL
	e.Caption = model.Caption
	e.DisplayOrder = model.DisplayOrder
}

type EventResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	EventDate   string               `json:"event_date"`
	Location    string               `json:"location"`
	ImageURL    *string              `json:"image_url,omitempty"`
	IsFeatured  bool                 `json:"is_featured"`
	IsPublished bool                 `json:"is_published"`
	CreatorName string               `json:"creator_name"`
	Images      []EventImageResponse `json:"images"`
	gDto.Metadata
}

func (e *EventResponse) FromModel(model model.Event) {
	e.ID = model.ID
	e.Title = model.Title
	e.Description = model.Description
	e.EventDate = model.EventDate.Format(constant.DateOnlyFormat)
	e.Location = model.Location
	e.ImageURL = model.ImageURL
	e.IsFeatured = model.IsFeatured
	e.IsPublished = model.IsPublished
	e.CreatorName = model.CreatorName
	e.Images = []EventImageResponse{}
	e.Metadata.FromModel(model.Metadata)
}

func (e *EventResponse) AttachImages(images []model.EventImage) {
	e.Images = make([]EventImageResponse, len(images))
	for i, img := range images {
		e.Images[i].FromModel(img)
	}
}

type GetEventsResponse struct {
	Events    []EventResponse `json:"events"`
	TotalData int             `json:"total_data"`
	TotalPage int             `json:"total_page"`
}

func (g *GetEventsResponse) FromModels(models []model.Event, totalData, limit int) {
	g.TotalData = totalData
	g.TotalPage = shared.CalculateTotalPage(totalData, limit)

	g.Events = make([]EventResponse, len(models))
	for i, mod := range models {
		g.Events[i].FromModel(mod)
	}
}
