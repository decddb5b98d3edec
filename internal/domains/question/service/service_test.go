package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"portal/config"
	"portal/infras/otel/mocks"
	questionMocks "portal/internal/domains/question/mocks"
	"portal/internal/domains/question/model"
	"portal/internal/domains/question/model/dto"
	"portal/internal/domains/question/service"
	cacheMocks "portal/shared/cache/mocks"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	"portal/shared/failure"
	gModel "portal/shared/model"
	"portal/shared/timezone"
)

func stringPtr(s string) *string {
	return &s
}

func taggedQuestion() model.Question {
	now := timezone.Now()

	return model.Question{
		ID:         "question-id-123",
		Title:      "How do I book the guest house?",
		Content:    "Which rooms are available for December?",
		Tags:       stringPtr(`["booking","guest-house"]`),
		AuthorID:   "member-id-123",
		AuthorName: "Test Member",
		Views:      4,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  "member-id-123",
			ModifiedBy: "member-id-123",
		},
	}
}

func TestQuestionService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := questionMocks.NewMockQuestion(ctrl)
	mockAnswerRepo := questionMocks.NewMockAnswer(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockAnswerRepo, cfg, mockCache, mockOtel)

	tests := []struct {
		name      string
		req       dto.CreateQuestionRequest
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful creation",
			req: dto.CreateQuestionRequest{
				Title:   "How do I book the guest house?",
				Content: "Which rooms are available for December?",
				Tags:    []string{"booking", "guest-house"},
			},
			setupMock: func() {
				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, question model.Question) error {
						assert.Equal(t, "member-id-123", question.AuthorID)
						assert.NotNil(t, question.Tags)
						assert.Contains(t, *question.Tags, "guest-house")
						return nil
					})

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "repository error",
			req: dto.CreateQuestionRequest{
				Title:   "How do I book the guest house?",
				Content: "Which rooms are available for December?",
			},
			setupMock: func() {
				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := svc.Create(context.Background(), tt.req, "member-id-123")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuestionService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := questionMocks.NewMockQuestion(ctrl)
	mockAnswerRepo := questionMocks.NewMockAnswer(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockAnswerRepo, cfg, mockCache, mockOtel)

	tests := []struct {
		name      string
		sort      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "recent sort attaches answer counts",
			sort: dto.SortRecent,
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(1, nil)

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Question, error) {
						assert.Equal(t, constant.FieldCreatedAt, params.SortBy)
						return []model.Question{taggedQuestion()}, nil
					})

				mockAnswerRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Answer{
						{ID: "answer-id-1", QuestionID: "question-id-123"},
						{ID: "answer-id-2", QuestionID: "question-id-123"},
					}, nil)

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "popular sort orders by views",
			sort: dto.SortPopular,
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(0, nil)

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Question, error) {
						assert.Equal(t, model.FieldViews, params.SortBy)
						return []model.Question{}, nil
					})

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "unanswered sort filters out answered questions",
			sort: dto.SortUnanswered,
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
						assert.Len(t, filter.Filters, 1)

						plain, ok := filter.Filters[0].(gDto.Filter)
						assert.True(t, ok)
						assert.Equal(t, gDto.FilterPlainQuery, plain.Operator)
						assert.True(t, strings.HasPrefix(plain.Value.(string), "NOT EXISTS"))

						return 0, nil
					})

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Question{}, nil)

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "count error",
			sort: dto.SortRecent,
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(0, errors.New("count error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.List(context.Background(), gDto.QueryParams{Limit: 10, Page: 1}, "", "", tt.sort)

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)

			if len(res.Questions) > 0 {
				assert.Equal(t, 2, res.Questions[0].AnswerCount)
				assert.Equal(t, []string{"booking", "guest-house"}, res.Questions[0].Tags)
			}
		})
	}
}

func TestQuestionService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := questionMocks.NewMockQuestion(ctrl)
	mockAnswerRepo := questionMocks.NewMockAnswer(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockAnswerRepo, cfg, mockCache, mockOtel)

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful get records a view",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(taggedQuestion(), nil)

				mockAnswerRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(2, nil)

				mockRepo.EXPECT().
					RecordView(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, view model.QuestionView) error {
						assert.Equal(t, "question-id-123", view.QuestionID)
						assert.Equal(t, "viewer-id-123", view.UserID)
						return nil
					}).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "question not found",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Question{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Get(context.Background(), "question-id-123", "viewer-id-123")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 2, res.AnswerCount)
				assert.Equal(t, 4, res.Views)
			}
		})
	}
}

func TestQuestionService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := questionMocks.NewMockQuestion(ctrl)
	mockAnswerRepo := questionMocks.NewMockAnswer(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockAnswerRepo, cfg, mockCache, mockOtel)

	tests := []struct {
		name      string
		userID    string
		role      string
		setupMock func()
		wantErr   bool
		wantCode  int
	}{
		{
			name:   "author deletes own question",
			userID: "member-id-123",
			role:   constant.RoleMember,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(taggedQuestion(), nil)

				mockRepo.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name:   "admin deletes any question",
			userID: "admin-id-123",
			role:   constant.RoleAdmin,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(taggedQuestion(), nil)

				mockRepo.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name:   "other member is rejected",
			userID: "stranger-id-456",
			role:   constant.RoleMember,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(taggedQuestion(), nil)
			},
			wantErr:  true,
			wantCode: 403,
		},
		{
			name:   "question not found",
			userID: "member-id-123",
			role:   constant.RoleMember,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Question{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, tt.userID)
			ctx = context.WithValue(ctx, constant.ContextKeyUserRole, tt.role)

			err := svc.Delete(ctx, "question-id-123")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuestionService_ListAnswers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := questionMocks.NewMockQuestion(ctrl)
	mockAnswerRepo := questionMocks.NewMockAnswer(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockAnswerRepo, cfg, mockCache, mockOtel)

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful list with accepted answers first",
			setupMock: func() {
				mockRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockAnswerRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Answer, error) {
						assert.Contains(t, params.SortBy, model.FieldIsAccepted)
						return []model.Answer{
							{ID: "answer-id-1", QuestionID: "question-id-123", IsAccepted: true},
							{ID: "answer-id-2", QuestionID: "question-id-123"},
						}, nil
					})
			},
			wantErr: false,
		},
		{
			name: "question not found",
			setupMock: func() {
				mockRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.ListAnswers(context.Background(), "question-id-123")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 2, res.TotalData)
				assert.True(t, res.Answers[0].IsAccepted)
			}
		})
	}
}

func TestQuestionService_CreateAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := questionMocks.NewMockQuestion(ctrl)
	mockAnswerRepo := questionMocks.NewMockAnswer(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockAnswerRepo, cfg, mockCache, mockOtel)

	req := dto.CreateAnswerRequest{Content: "Rooms open a month ahead."}

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful answer",
			setupMock: func() {
				mockRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockAnswerRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, answer model.Answer) error {
						assert.Equal(t, "question-id-123", answer.QuestionID)
						assert.Equal(t, "member-id-456", answer.AuthorID)
						return nil
					})

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "question not found",
			setupMock: func() {
				mockRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := svc.CreateAnswer(context.Background(), req, "question-id-123", "member-id-456")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
