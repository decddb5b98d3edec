package dto

import (
	"encoding/json"

	"portal/internal/domains/question/model"
	"portal/shared"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	gModel "portal/shared/model"
	"portal/shared/timezone"

	"github.com/google/uuid"
)

const (
	SortRecent     = "recent"
	SortPopular    = "popular"
	SortUnanswered = "unanswered"
)

type CreateQuestionRequest struct {
	Title   string   `json:"title"   validate:"required,min=5,max=200"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags"    validate:"omitempty,max=5,dive,max=30"`
}

func (c *CreateQuestionRequest) ToModel(authorID string) model.Question {
	question := model.Question{
		ID:       uuid.NewString(),
		Title:    c.Title,
		Content:  c.Content,
		AuthorID: authorID,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  authorID,
			ModifiedBy: authorID,
		},
	}

	if len(c.Tags) > 0 {
		if encoded, err := json.Marshal(c.Tags); err == nil {
			tags := string(encoded)
			question.Tags = &tags
		}
	}

	return question
}

type CreateAnswerRequest struct {
	Content string `json:"content" validate:"required"`
}

func (c *CreateAnswerRequest) ToModel(questionID, authorID string) model.Answer {
	return model.Answer{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    c.Content,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  authorID,
			ModifiedBy: authorID,
		},
	}
}

type AnswerResponse struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	IsAccepted bool   `json:"is_accepted"`
	gDto.Metadata
}

func (a *AnswerResponse) FromModel(model model.Answer) {
	a.ID = model.ID
	a.QuestionID = model.QuestionID
	a.AuthorID = model.AuthorID
	a.AuthorName = model.AuthorName
	a.Content = model.Content
	a.IsAccepted = model.IsAccepted
	a.Metadata.FromModel(model.Metadata)
}

type GetAnswersResponse struct {
	Answers   []AnswerResponse `json:"answers"`
	TotalData int              `json:"total_data"`
}

func (g *GetAnswersResponse) FromModels(models []model.Answer) {
	g.TotalData = len(models)

	g.Answers = make([]AnswerResponse, len(models))
	for i, mod := range models {
		g.Answers[i].FromModel(mod)
	}
}

type QuestionResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	AuthorID    string   `json:"author_id"`
	AuthorName  string   `json:"author_name"`
	Views       int      `json:"views"`
	AnswerCount int      `json:"answer_count"`
	gDto.Metadata
}

func (q *QuestionResponse) FromModel(model model.Question) {
	q.ID = model.ID
	q.Title = model.Title
	q.Content = model.Content
	q.AuthorID = model.AuthorID
	q.AuthorName = model.AuthorName
	q.Views = model.Views
	q.Tags = []string{}
	q.Metadata.FromModel(model.Metadata)

	if model.Tags != nil && *model.Tags != constant.Empty {
		_ = json.Unmarshal([]byte(*model.Tags), &q.Tags)
	}
}

type GetQuestionsResponse struct {
	Questions []QuestionResponse `json:"questions"`
	TotalData int                `json:"total_data"`
	TotalPage int                `json:"total_page"`
}

func (g *GetQuestionsResponse) FromModels(models []model.Question, totalData, limit int) {
	g.TotalData = totalData
	g.TotalPage = shared.CalculateTotalPage(totalData, limit)

	g.Questions = make([]QuestionResponse, len(models))
	for i, mod := range models {
		g.Questions[i].FromModel(mod)
	}
}
