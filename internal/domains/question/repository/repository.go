package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"portal/infras/otel"
	"portal/infras/postgres"
	"portal/internal/domains/question/model"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	"portal/shared/logger"
	gRepo "portal/shared/repository"
)

type Question interface {
	Insert(ctx context.Context, model model.Question) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Question, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Question, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	RecordView(ctx context.Context, view model.QuestionView) error
}

type Answer interface {
	Insert(ctx context.Context, model model.Answer) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Answer, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Question]
	viewRepo gRepo.Repository[model.QuestionView]
	db       *postgres.Connection
	otel     otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Question {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Question](model.EntityName, model.TableName, model.FieldID, db, otel),
		viewRepo:   gRepo.NewRepository[model.QuestionView](model.ViewEntityName, model.ViewTableName, model.FieldViewID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// RecordView bumps the view counter and writes the audit row atomically.
func (repo *repositoryImpl) RecordView(ctx context.Context, view model.QuestionView) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".question.RecordView")
	defer scope.End()
	defer scope.TraceIfError(err)

	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin transaction (%s): %w", model.EntityName, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	incrementQuery := fmt.Sprintf(
		"UPDATE %s SET %s = %s + 1 WHERE %s = $1",
		model.TableName,
		model.FieldViews, model.FieldViews,
		model.FieldID,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, incrementQuery)

	if _, err = tx.ExecContext(ctx, incrementQuery, view.QuestionID); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to increment views (%s): %w", model.EntityName, err)
	}

	if err = repo.viewRepo.InsertTx(ctx, tx, view); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit transaction (%s): %w", model.EntityName, err)
	}

	return nil
}

type answerRepositoryImpl struct {
	gRepo.Repository[model.Answer]
	db   *postgres.Connection
	otel otel.Otel
}

func NewAnswer(db *postgres.Connection, otel otel.Otel) Answer {
	return &answerRepositoryImpl{
		Repository: gRepo.NewRepository[model.Answer](model.AnswerEntityName, model.AnswerTableName, model.FieldAnswerID, db, otel),
		db:         db,
		otel:       otel,
	}
}
