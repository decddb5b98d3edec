package question

import (
	"net/http"
	"portal/infras/otel"
	"portal/internal/domains/question/model/dto"
	"portal/internal/domains/question/service"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	"portal/shared/validator"
	"portal/transport/http/middleware"
	"portal/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Question
	otel       otel.Otel
	middleware middleware.AuthRole
}

func New(service service.Question, otel otel.Otel, middleware middleware.AuthRole) Handler {
	return Handler{
		service:    service,
		otel:       otel,
		middleware: middleware,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/questions", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Auth)

		routerGroup.Get("/", handler.GetQuestions)
		routerGroup.Post("/", handler.CreateQuestion)
		routerGroup.Get("/{id}", handler.GetQuestionByID)
		routerGroup.Delete("/{id}", handler.DeleteQuestion)
		routerGroup.Get("/{id}/answers", handler.GetAnswers)
		routerGroup.Post("/{id}/answers", handler.CreateAnswer)
	})
}

// GetQuestions lists questions.
// @Summary Get questions
// @Description Retrieve questions with search, tag filter and sort (recent, popular, unanswered).
// @Tags Question
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param search query string false "Search in title and content"
// @Param tag query string false "Filter by tag"
// @Param sort query string false "Sort mode (recent, popular, unanswered)"
// @Success 200 {object} dto.GetQuestionsResponse "List of questions"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/questions [get]
// @Security BearerAuth
func (handler *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetQuestions")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	search := r.URL.Query().Get("search")
	tag := r.URL.Query().Get("tag")
	sort := r.URL.Query().Get("sort")

	questions, err := handler.service.List(ctx, queryParams, search, tag, sort)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get questions")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Questions retrieved successfully")

	response.WithJSON(w, http.StatusOK, questions)
}

// CreateQuestion posts a new question.
// @Summary Create a question
// @Description Post a new question to the board.
// @Tags Question
// @Accept json
// @Produce json
// @Param request body dto.CreateQuestionRequest true "Create Question Request"
// @Success 201 {object} response.Message "Question created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/questions [post]
// @Security BearerAuth
func (handler *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateQuestion")
	defer scope.End()

	req := dto.CreateQuestionRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err := handler.service.Create(ctx, req, userID); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create question")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Question created successfully by user " + userID)

	response.WithMessage(w, http.StatusCreated, "Question created successfully")
}

// GetQuestionByID retrieves a question and counts the view.
// @Summary Get a question by ID
// @Description Retrieve a question; each read bumps the view counter.
// @Tags Question
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} dto.QuestionResponse "Question details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/questions/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetQuestionByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetQuestionByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	question, err := handler.service.Get(ctx, id, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get question by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Question retrieved successfully")

	response.WithJSON(w, http.StatusOK, question)
}

// DeleteQuestion deletes a question.
// @Summary Delete a question by ID
// @Description Delete a question. Only the author or an admin may delete it.
// @Tags Question
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} response.Message "Question deleted successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/questions/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteQuestion")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete question")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Question deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Question deleted successfully")
}

// GetAnswers lists the answers of a question.
// @Summary Get answers
// @Description Retrieve answers for a question, accepted first then oldest.
// @Tags Question
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} dto.GetAnswersResponse "List of answers"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/questions/{id}/answers [get]
// @Security BearerAuth
func (handler *Handler) GetAnswers(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAnswers")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	answers, err := handler.service.ListAnswers(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get answers")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Answers retrieved successfully")

	response.WithJSON(w, http.StatusOK, answers)
}

// CreateAnswer posts an answer to a question.
// @Summary Create an answer
// @Description Post an answer to a question.
// @Tags Question
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param request body dto.CreateAnswerRequest true "Create Answer Request"
// @Success 201 {object} response.Message "Answer created successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/questions/{id}/answers [post]
// @Security BearerAuth
func (handler *Handler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAnswer")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.CreateAnswerRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err := handler.service.CreateAnswer(ctx, req, id, userID); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create answer")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Answer created successfully by user " + userID)

	response.WithMessage(w, http.StatusCreated, "Answer created successfully")
}
