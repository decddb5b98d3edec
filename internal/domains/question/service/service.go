package service

import (
	"context"
	"fmt"

	"portal/config"
	"portal/infras/otel"
	"portal/internal/domains/question/model"
	"portal/internal/domains/question/model/dto"
	"portal/internal/domains/question/repository"
	"portal/shared"
	"portal/shared/cache"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	"portal/shared/failure"
	"portal/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetAllQuestion = "question:gets"
)

type Question interface {
	Create(ctx context.Context, req dto.CreateQuestionRequest, authorID string) error
	List(ctx context.Context, req gDto.QueryParams, search, tag, sort string) (dto.GetQuestionsResponse, error)
	Get(ctx context.Context, id, viewerID string) (dto.QuestionResponse, error)
	Delete(ctx context.Context, id string) error
	ListAnswers(ctx context.Context, questionID string) (dto.GetAnswersResponse, error)
	CreateAnswer(ctx context.Context, req dto.CreateAnswerRequest, questionID, authorID string) error
}

type serviceImpl struct {
	repo       repository.Question
	answerRepo repository.Answer
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
}

func New(repo repository.Question, answerRepo repository.Answer, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Question {
	return &serviceImpl{
		repo:       repo,
		answerRepo: answerRepo,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateQuestionRequest, authorID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = s.repo.Insert(ctx, req.ToModel(authorID)); err != nil {
		log.Error().Err(err).Msg("failed to create question")

		return fmt.Errorf("failed to create question: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllQuestion)
	}()

	return nil
}

func (s *serviceImpl) List(ctx context.Context, req gDto.QueryParams, search, tag, sort string) (res dto.GetQuestionsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".List")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := buildListFilter(search, tag, sort)
	applySort(&req, sort)

	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(cacheGetAllQuestion, sort), req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for questions")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count questions")

		return res, fmt.Errorf("failed to count questions: %w", err)
	}

	questions, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get questions")

		return res, fmt.Errorf("failed to get questions: %w", err)
	}

	res.FromModels(questions, total, req.Limit)

	if err = s.attachAnswerCounts(ctx, &res); err != nil {
		return res, err
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save questions to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id, viewerID string) (res dto.QuestionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	question, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get question")

		return res, fmt.Errorf("failed to get question: %w", err)
	}

	if question.ID == constant.Empty {
		return res, failure.NotFound("question not found") // nolint:wrapcheck
	}

	res.FromModel(question)

	count, err := s.answerRepo.Count(ctx, answerFilter(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to count answers")

		return res, fmt.Errorf("failed to count answers: %w", err)
	}

	res.AnswerCount = count

	// Counting a view never fails the read.
	go func() {
		c := context.WithoutCancel(ctx)

		view := model.QuestionView{
			ID:         uuid.NewString(),
			QuestionID: id,
			UserID:     viewerID,
			ViewedAt:   timezone.Now(),
		}

		if err := s.repo.RecordView(c, view); err != nil {
			log.Error().Err(err).Str("questionID", id).Msg("failed to record question view")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	question, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get question")

		return fmt.Errorf("failed to get question: %w", err)
	}

	if question.ID == constant.Empty {
		return failure.NotFound("question not found") // nolint:wrapcheck
	}

	if role != constant.RoleAdmin && question.AuthorID != userID {
		return failure.ResourceRestrictedError
	}

	// Answers and view rows go with the question via FK cascade.
	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete question")

		return fmt.Errorf("failed to delete question: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllQuestion)
	}()

	return nil
}

func (s *serviceImpl) ListAnswers(ctx context.Context, questionID string) (res dto.GetAnswersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListAnswers")
	defer scope.End()
	defer scope.TraceIfError(err)

	exist, err := s.repo.Exist(ctx, shared.FilterByID(questionID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check question existence")

		return res, fmt.Errorf("failed to check question existence: %w", err)
	}

	if !exist {
		return res, failure.NotFound("question not found") // nolint:wrapcheck
	}

	// Accepted answers first, then the discussion in posting order.
	params := gDto.QueryParams{
		SortBy:  fmt.Sprintf("%s DESC, %s", model.FieldIsAccepted, constant.FieldCreatedAt),
		SortDir: gDto.SortDirAsc,
	}

	answers, err := s.answerRepo.GetAll(ctx, params, answerFilter(questionID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get answers")

		return res, fmt.Errorf("failed to get answers: %w", err)
	}

	res.FromModels(answers)

	return res, nil
}

func (s *serviceImpl) CreateAnswer(ctx context.Context, req dto.CreateAnswerRequest, questionID, authorID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateAnswer")
	defer scope.End()
	defer scope.TraceIfError(err)

	exist, err := s.repo.Exist(ctx, shared.FilterByID(questionID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check question existence")

		return fmt.Errorf("failed to check question existence: %w", err)
	}

	if !exist {
		return failure.NotFound("question not found") // nolint:wrapcheck
	}

	if err = s.answerRepo.Insert(ctx, req.ToModel(questionID, authorID)); err != nil {
		log.Error().Err(err).Msg("failed to create answer")

		return fmt.Errorf("failed to create answer: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllQuestion)
	}()

	return nil
}

func (s *serviceImpl) attachAnswerCounts(ctx context.Context, res *dto.GetQuestionsResponse) error {
	if len(res.Questions) == 0 {
		return nil
	}

	ids := make([]string, len(res.Questions))
	for i, question := range res.Questions {
		ids[i] = question.ID
	}

	answers, err := s.answerRepo.GetAll(ctx, gDto.QueryParams{}, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldAnswerQuestionID,
				Operator: gDto.FilterOperatorIn,
				Value:    ids,
				Table:    model.AnswerTableName,
			},
		},
	}, model.FieldAnswerQuestionID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get answer counts")

		return fmt.Errorf("failed to get answer counts: %w", err)
	}

	counts := map[string]int{}
	for _, answer := range answers {
		counts[answer.QuestionID]++
	}

	for i := range res.Questions {
		res.Questions[i].AnswerCount = counts[res.Questions[i].ID]
	}

	return nil
}

func buildListFilter(search, tag, sort string) gDto.FilterGroup {
	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if search != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{
					ArgName:  "search_title",
					Field:    model.FieldTitle,
					Operator: gDto.FilterOperatorLike,
					Value:    search,
					Table:    model.TableName,
				},
				gDto.Filter{
					ArgName:  "search_content",
					Field:    model.FieldContent,
					Operator: gDto.FilterOperatorLike,
					Value:    search,
					Table:    model.TableName,
				},
			},
		})
	}

	if tag != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldTags,
			Operator: gDto.FilterOperatorLike,
			Value:    tag,
			Table:    model.TableName,
		})
	}

	if sort == dto.SortUnanswered {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Operator: gDto.FilterPlainQuery,
			Value: fmt.Sprintf(
				"NOT EXISTS (SELECT 1 FROM %s WHERE %s.%s = %s.%s)",
				model.AnswerTableName,
				model.AnswerTableName, model.FieldAnswerQuestionID,
				model.TableName, model.FieldID,
			),
		})
	}

	return filter
}

func applySort(req *gDto.QueryParams, sort string) {
	if req.SortBy != constant.Empty {
		return
	}

	switch sort {
	case dto.SortPopular:
		req.SortBy = model.FieldViews
		req.SortDir = gDto.SortDirDesc
	default:
		req.SortBy = constant.FieldCreatedAt
		req.SortDir = gDto.SortDirDesc
	}
}

func answerFilter(questionID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldAnswerQuestionID,
				Operator: gDto.FilterOperatorEq,
				Value:    questionID,
				Table:    model.AnswerTableName,
			},
		},
	}
}
