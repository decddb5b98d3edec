package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"portal/config"
	kafkaMocks "portal/infras/kafka/mocks"
	"portal/infras/otel/mocks"
	s3Mocks "portal/infras/s3/mocks"
	userMocks "portal/internal/domains/user/mocks"
	"portal/internal/domains/user/model"
	"portal/internal/domains/user/model/dto"
	"portal/internal/domains/user/service"
	cacheMocks "portal/shared/cache/mocks"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	gModel "portal/shared/model"
	"portal/shared/timezone"
)

func stringPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func completeMember(confirmedAt *time.Time) model.User {
	now := timezone.Now()

	return model.User{
		ID:                       "member-id-123",
		Email:                    "member@example.com",
		Name:                     "Test Member",
		Role:                     constant.RoleMember,
		IsApproved:               true,
		ApprovedAt:               timePtr(now),
		EmployeeID:               stringPtr("EMP-001"),
		DateOfJoining:            timePtr(now.AddDate(-3, 0, 0)),
		DateOfBirth:              timePtr(now.AddDate(-30, 0, 0)),
		BloodGroup:               stringPtr("O+"),
		Posting:                  stringPtr("Head Office"),
		LastPostingConfirmedAt:   confirmedAt,
		EmergencyContactName:     stringPtr("Next Of Kin"),
		EmergencyContactPhone:    stringPtr("+1234567890"),
		EmergencyContactRelation: stringPtr("spouse"),
		InsuranceNomineeName:     stringPtr("Next Of Kin"),
		InsuranceNomineePhone:    stringPtr("+1234567890"),
		InsuranceNomineeRelation: stringPtr("spouse"),
		IsProfileComplete:        true,
		Active:                   true,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  "system",
			ModifiedBy: "system",
		},
	}
}

func TestUserService_ListMembers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockS3, mockKafka)

	tests := []struct {
		name      string
		params    gDto.QueryParams
		setupMock func()
		wantErr   bool
	}{
		{
			name:   "successful list with approval counters",
			params: gDto.QueryParams{Limit: 10, Page: 1},
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(2, nil)

				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(1, nil)

				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(1, nil)

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.User{completeMember(nil)}, nil)

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name:   "count error",
			params: gDto.QueryParams{Limit: 10, Page: 1},
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

			res, err := svc.ListMembers(context.Background(), tt.params, gDto.FilterGroup{})

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 2, res.TotalData)
				assert.Equal(t, 1, res.TotalApproved)
				assert.Equal(t, 1, res.TotalPending)
			}
		})
	}
}

func TestUserService_ApproveMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockS3, mockKafka)

	tests := []struct {
		name      string
		id        string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful approval publishes notification",
			id:   "member-id-123",
			setupMock: func() {
				pending := completeMember(nil)
				pending.IsApproved = false
				pending.ApprovedAt = nil

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pending, nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				mockKafka.EXPECT().
					SendMessages(gomock.Any(), constant.KafkaTopicNotifications, gomock.Any()).
					Return(nil).
					AnyTimes()

				mockCache.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "approving twice is a no-op",
			id:   "member-id-123",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(completeMember(nil), nil)
			},
			wantErr: false,
		},
		{
			name: "member not found",
			id:   "nonexistent-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.User{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-id")
			err := svc.ApproveMember(ctx, tt.id)

			time.Sleep(50 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserService_ProfileStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockS3, mockKafka)

	now := timezone.Now()
	lastMonth := now.AddDate(0, -1, 0)

	tests := []struct {
		name       string
		setupMock  func()
		wantErr    bool
		wantStatus model.GateStatus
	}{
		{
			name: "incomplete profile needs completion",
			setupMock: func() {
				incomplete := completeMember(timePtr(now))
				incomplete.BloodGroup = nil
				incomplete.IsProfileComplete = false

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(incomplete, nil)
			},
			wantStatus: model.GateNeedsCompletion,
		},
		{
			name: "stale confirmation needs monthly confirmation",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(completeMember(timePtr(lastMonth)), nil)
			},
			wantStatus: model.GateNeedsMonthlyConfirmation,
		},
		{
			name: "confirmed this month is current",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(completeMember(timePtr(now)), nil)
			},
			wantStatus: model.GateCurrent,
		},
		{
			name: "member not found",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.User{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.ProfileStatus(context.Background(), "member-id-123")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantStatus, res.Status)
			}
		})
	}
}

func TestUserService_CompleteFirstTime(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockS3, mockKafka)

	req := dto.CompleteProfileRequest{
		DateOfJoining:            "2020-04-01",
		BloodGroup:               "O+",
		DateOfBirth:              "1990-01-15",
		EmployeeID:               "EMP-001",
		EmergencyContactName:     "Next Of Kin",
		EmergencyContactPhone:    "+1234567890",
		EmergencyContactRelation: "spouse",
		InsuranceNomineeName:     "Next Of Kin",
		InsuranceNomineePhone:    "+1234567890",
		InsuranceNomineeRelation: "spouse",
		LastPlaceOfPosting:       "Head Office",
	}

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful first-time completion",
			setupMock: func() {
				incomplete := completeMember(nil)
				incomplete.IsProfileComplete = false

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(incomplete, nil)

				mockRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				mockCache.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "employee id already in use",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(completeMember(nil), nil)

				mockRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
			},
			wantErr: true,
		},
		{
			name: "member not found",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.User{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := svc.CompleteFirstTime(context.Background(), req, "member-id-123")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserService_ConfirmPosting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockS3, mockKafka)

	tests := []struct {
		name            string
		req             dto.ConfirmPostingRequest
		setupMock       func()
		wantErr         bool
		wantLastPosting any
	}{
		{
			name: "changed posting records the outgoing one",
			req:  dto.ConfirmPostingRequest{Posting: "Regional Office"},
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(completeMember(nil), nil)
			},
			wantLastPosting: "Head Office",
		},
		{
			name: "unchanged posting keeps the history untouched",
			req:  dto.ConfirmPostingRequest{Posting: "Head Office"},
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(completeMember(nil), nil)
			},
			wantLastPosting: nil,
		},
		{
			name: "member not found",
			req:  dto.ConfirmPostingRequest{Posting: "Head Office"},
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.User{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			var captured map[string]any
			if !tt.wantErr {
				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						captured = fields
						return nil
					})

				mockCache.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			}

			err := svc.ConfirmPosting(context.Background(), tt.req, "member-id-123")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.req.Posting, captured[model.FieldPosting])
			assert.Contains(t, captured, model.FieldLastPostingConfirmedAt)

			if tt.wantLastPosting != nil {
				assert.Equal(t, tt.wantLastPosting, captured[model.FieldLastPlaceOfPosting])
			} else {
				assert.NotContains(t, captured, model.FieldLastPlaceOfPosting)
			}
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()
	mockS3 := s3Mocks.NewMockS3(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.External.S3.BucketName = "test-bucket"

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, mockS3, mockKafka)

	tests := []struct {
		name      string
		req       dto.UpdateProfileRequest
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful update without image",
			req: dto.UpdateProfileRequest{
				Name:  "Renamed Member",
				Phone: "+1987654321",
			},
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(completeMember(nil), nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				mockCache.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "duplicate employee id",
			req: dto.UpdateProfileRequest{
				EmployeeID: "EMP-002",
			},
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(completeMember(nil), nil)

				mockRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
			},
			wantErr: true,
		},
		{
			name: "member not found",
			req:  dto.UpdateProfileRequest{Name: "Nobody"},
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.User{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := svc.UpdateProfile(context.Background(), tt.req, "member-id-123")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
