package model

import (
	"fmt"
	"time"

	userModel "portal/internal/domains/user/model"
	"portal/shared/model"
)

const (
	TableName  = "questions"
	EntityName = "question"

	FieldID       = "id"
	FieldTitle    = "title"
	FieldContent  = "content"
	FieldTags     = "tags"
	FieldAuthorID = "author_id"
	FieldViews    = "views"
)

const (
	AnswerTableName  = "answers"
	AnswerEntityName = "answer"

	FieldAnswerID         = "id"
	FieldAnswerQuestionID = "question_id"
	FieldAnswerAuthorID   = "author_id"
	FieldAnswerContent    = "content"
	FieldIsAccepted       = "is_accepted"
)

const (
	ViewTableName  = "question_views"
	ViewEntityName = "question_view"

	FieldViewID         = "id"
	FieldViewQuestionID = "question_id"
	FieldViewUserID     = "user_id"
	FieldViewedAt       = "viewed_at"
)

// Question stores tags as a JSON-encoded string array.
type Question struct {
	ID         string  `db:"id"`
	Title      string  `db:"title"`
	Content    string  `db:"content"`
	Tags       *string `db:"tags"`
	AuthorID   string  `db:"author_id"`
	Views      int     `db:"views"`
	AuthorName string  `db:"author_name" table:"users" column:"name"`
	model.Metadata
}

func (Question) GetJoinQuery() string {
	return fmt.Sprintf("LEFT JOIN %s ON %s.%s = %s.%s",
		userModel.TableName,
		userModel.TableName, userModel.FieldID,
		TableName, FieldAuthorID,
	)
}

type Answer struct {
	ID         string `db:"id"`
	QuestionID string `db:"question_id"`
	AuthorID   string `db:"author_id"`
	Content    string `db:"content"`
	IsAccepted bool   `db:"is_accepted"`
	AuthorName string `db:"author_name" table:"users" column:"name"`
	model.Metadata
}

func (Answer) GetJoinQuery() string {
	return fmt.Sprintf("LEFT JOIN %s ON %s.%s = %s.%s",
		userModel.TableName,
		userModel.TableName, userModel.FieldID,
		AnswerTableName, FieldAnswerAuthorID,
	)
}

type QuestionView struct {
	ID         string    `db:"id"`
	QuestionID string    `db:"question_id"`
	UserID     string    `db:"user_id"`
	ViewedAt   time.Time `db:"viewed_at"`
}
