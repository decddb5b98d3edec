package model

import (
	"fmt"
	"time"

	userModel "portal/internal/domains/user/model"
	"portal/shared/constant"
	"portal/shared/model"
)

const (
	TableName  = "events"
	EntityName = "event"

	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldEventDate   = "event_date"
	FieldLocation    = "location"
	FieldImageURL    = "image_url"
	FieldIsFeatured  = "is_featured"
	FieldIsPublished = "is_published"
)

const (
	ImageTableName  = "event_images"
	ImageEntityName = "event_image"

	FieldImageID      = "id"
	FieldImageEventID = "event_id"
	FieldImageCaption = "caption"
	FieldDisplayOrder = "display_order"
)

type Event struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	EventDate   time.Time `db:"event_date"`
	Location    string    `db:"location"`
	ImageURL    *string   `db:"image_url"`
	IsFeatured  bool      `db:"is_featured"`
	IsPublished bool      `db:"is_published"`
	CreatorName string    `db:"creator_name" table:"users" column:"name"`
	model.Metadata
}

func (Event) GetJoinQuery() string {
	return fmt.Sprintf("LEFT JOIN %s ON %s.%s = %s.%s",
		userModel.TableName,
		userModel.TableName, userModel.FieldID,
		TableName, constant.FieldCreatedBy,
	)
}

type EventImage struct {
	ID           string  `db:"id"`
	EventID      string  `db:"event_id"`
	ImageURL     string  `db:"image_url"`
	Caption      *string `db:"caption"`
	DisplayOrder int     `db:"display_order"`
	model.Metadata
}
