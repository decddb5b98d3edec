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
	availabilityMocks "portal/internal/domains/availability/mocks"
	availabilityModel "portal/internal/domains/availability/model"
	bookingMocks "portal/internal/domains/booking/mocks"
	"portal/internal/domains/booking/model"
	"portal/internal/domains/booking/model/dto"
	"portal/internal/domains/booking/repository"
	"portal/internal/domains/booking/service"
	cacheMocks "portal/shared/cache/mocks"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	"portal/shared/failure"
	gModel "portal/shared/model"
	"portal/shared/timezone"
)

func floatPtr(f float64) *float64 {
	return &f
}

func stringPtr(s string) *string {
	return &s
}

func openLedgerRow() availabilityModel.Availability {
	return availabilityModel.Availability{
		ID:             "availability-id-123",
		GuestHouse:     "Lakeside House",
		Location:       "North Campus",
		RoomType:       "Double",
		TotalRooms:     10,
		AvailableRooms: 3,
		IsActive:       true,
	}
}

func pendingBooking() model.Booking {
	now := timezone.Now()

	return model.Booking{
		ID:             "booking-id-123",
		UserID:         "member-id-123",
		AvailabilityID: stringPtr("availability-id-123"),
		GuestHouse:     "Lakeside House",
		Location:       "North Campus",
		RoomType:       "Double",
		CheckIn:        now.AddDate(0, 0, 7),
		CheckOut:       now.AddDate(0, 0, 9),
		Guests:         2,
		Purpose:        "official visit",
		Status:         constant.BookingStatusPending,
		RequesterName:  "Test Member",
		RequesterEmail: "member@example.com",
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  "member-id-123",
			ModifiedBy: "member-id-123",
		},
	}
}

func TestBookingService_Submit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockAvailabilityRepo := availabilityMocks.NewMockAvailability(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockAvailabilityRepo, cfg, mockCache, mockOtel, mockKafka)

	checkIn := timezone.Now().AddDate(0, 0, 7).Format(constant.DateOnlyFormat)
	checkOut := timezone.Now().AddDate(0, 0, 9).Format(constant.DateOnlyFormat)
	yesterday := timezone.Now().AddDate(0, 0, -1).Format(constant.DateOnlyFormat)

	tests := []struct {
		name      string
		req       dto.SubmitBookingRequest
		setupMock func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "successful submission reserves a room",
			req: dto.SubmitBookingRequest{
				AvailabilityID: "availability-id-123",
				CheckIn:        checkIn,
				CheckOut:       checkOut,
				Guests:         2,
				Purpose:        "official visit",
			},
			setupMock: func() {
				mockAvailabilityRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(openLedgerRow(), nil)

				mockRepo.EXPECT().
					InsertWithReservation(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, booking model.Booking) error {
						assert.Equal(t, constant.BookingStatusPending, booking.Status)
						assert.Equal(t, "Lakeside House", booking.GuestHouse)
						assert.Equal(t, "member-id-123", booking.UserID)
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
			name: "check-out before check-in",
			req: dto.SubmitBookingRequest{
				AvailabilityID: "availability-id-123",
				CheckIn:        checkOut,
				CheckOut:       checkIn,
				Guests:         2,
			},
			setupMock: func() {},
			wantErr:   true,
		},
		{
			name: "check-in in the past",
			req: dto.SubmitBookingRequest{
				AvailabilityID: "availability-id-123",
				CheckIn:        yesterday,
				CheckOut:       checkOut,
				Guests:         2,
			},
			setupMock: func() {},
			wantErr:   true,
		},
		{
			name: "inactive guest house",
			req: dto.SubmitBookingRequest{
				AvailabilityID: "availability-id-123",
				CheckIn:        checkIn,
				CheckOut:       checkOut,
				Guests:         2,
			},
			setupMock: func() {
				closed := openLedgerRow()
				closed.IsActive = false

				mockAvailabilityRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(closed, nil)
			},
			wantErr:  true,
			wantCode: 409,
		},
		{
			name: "lost the race for the last room",
			req: dto.SubmitBookingRequest{
				AvailabilityID: "availability-id-123",
				CheckIn:        checkIn,
				CheckOut:       checkOut,
				Guests:         2,
			},
			setupMock: func() {
				mockAvailabilityRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(openLedgerRow(), nil)

				mockRepo.EXPECT().
					InsertWithReservation(gomock.Any(), gomock.Any()).
					Return(repository.ErrNoRoomsAvailable)
			},
			wantErr:  true,
			wantCode: 409,
		},
		{
			name: "availability not found",
			req: dto.SubmitBookingRequest{
				AvailabilityID: "nonexistent-id",
				CheckIn:        checkIn,
				CheckOut:       checkOut,
				Guests:         2,
			},
			setupMock: func() {
				mockAvailabilityRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(availabilityModel.Availability{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := svc.Submit(context.Background(), tt.req, "member-id-123")

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

func TestBookingService_ListForAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockAvailabilityRepo := availabilityMocks.NewMockAvailability(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockAvailabilityRepo, cfg, mockCache, mockOtel, mockKafka)

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful list with status counters",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(3, nil)

				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(1, nil)

				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(1, nil)

				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(1, nil)

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{pendingBooking()}, nil)

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "count error",
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

			res, err := svc.ListForAdmin(context.Background(), gDto.QueryParams{Limit: 10, Page: 1}, gDto.FilterGroup{})

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 3, res.TotalData)
				assert.Equal(t, 1, res.TotalPending)
			}
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockAvailabilityRepo := availabilityMocks.NewMockAvailability(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockAvailabilityRepo, cfg, mockCache, mockOtel, mockKafka)

	tests := []struct {
		name      string
		role      string
		userID    string
		setupMock func()
		wantErr   bool
		wantCode  int
	}{
		{
			name:   "owner can read their booking",
			role:   constant.RoleMember,
			userID: "member-id-123",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name:   "admin can read any booking",
			role:   constant.RoleAdmin,
			userID: "admin-id",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name:   "other members are kept out",
			role:   constant.RoleMember,
			userID: "someone-else",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr:  true,
			wantCode: 403,
		},
		{
			name:   "booking not found",
			role:   constant.RoleAdmin,
			userID: "admin-id",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, tt.userID)
			ctx = context.WithValue(ctx, constant.ContextKeyUserRole, tt.role)

			res, err := svc.Get(ctx, "booking-id-123")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "booking-id-123", res.ID)
			}
		})
	}
}

func TestBookingService_Approve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockAvailabilityRepo := availabilityMocks.NewMockAvailability(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockAvailabilityRepo, cfg, mockCache, mockOtel, mockKafka)

	tests := []struct {
		name      string
		req       dto.ApproveBookingRequest
		setupMock func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "successful approval with amount",
			req:  dto.ApproveBookingRequest{TotalAmount: floatPtr(240)},
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, constant.BookingStatusApproved, fields[model.FieldStatus])
						assert.Equal(t, 240.0, fields[model.FieldTotalAmount])
						return nil
					})

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
			name: "already resolved booking conflicts",
			req:  dto.ApproveBookingRequest{},
			setupMock: func() {
				resolved := pendingBooking()
				resolved.Status = constant.BookingStatusApproved

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(resolved, nil)
			},
			wantErr:  true,
			wantCode: 409,
		},
		{
			name: "booking not found",
			req:  dto.ApproveBookingRequest{},
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-id")
			err := svc.Approve(ctx, tt.req, "booking-id-123")

			time.Sleep(50 * time.Millisecond)

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

func TestBookingService_Reject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockAvailabilityRepo := availabilityMocks.NewMockAvailability(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockAvailabilityRepo, cfg, mockCache, mockOtel, mockKafka)

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "rejection restores the room in the same transaction",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				mockRepo.EXPECT().
					UpdateWithRestore(gomock.Any(), gomock.Any(), "booking-id-123", gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ string, availabilityID *string) error {
						assert.Equal(t, constant.BookingStatusRejected, fields[model.FieldStatus])
						assert.Equal(t, "dates unavailable", fields[model.FieldRejectedReason])
						if assert.NotNil(t, availabilityID) {
							assert.Equal(t, "availability-id-123", *availabilityID)
						}
						return nil
					})

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
			name: "rejection after the ledger row was removed skips the restore",
			setupMock: func() {
				orphaned := pendingBooking()
				orphaned.AvailabilityID = nil

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(orphaned, nil)

				mockRepo.EXPECT().
					UpdateWithRestore(gomock.Any(), gomock.Any(), "booking-id-123", gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ string, availabilityID *string) error {
						assert.Equal(t, constant.BookingStatusRejected, fields[model.FieldStatus])
						assert.Nil(t, availabilityID)
						return nil
					})

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
			name: "already resolved booking conflicts",
			setupMock: func() {
				resolved := pendingBooking()
				resolved.Status = constant.BookingStatusRejected

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(resolved, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-id")
			err := svc.Reject(ctx, dto.RejectBookingRequest{Reason: "dates unavailable"}, "booking-id-123")

			time.Sleep(50 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
