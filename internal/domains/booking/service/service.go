package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal/config"
	"portal/infras/kafka"
	"portal/infras/otel"
	availabilityModel "portal/internal/domains/availability/model"
	availabilityRepo "portal/internal/domains/availability/repository"
	"portal/internal/domains/booking/model"
	"portal/internal/domains/booking/model/dto"
	"portal/internal/domains/booking/repository"
	"portal/shared"
	"portal/shared/cache"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	"portal/shared/failure"
	"portal/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"

	cacheAvailabilityPrefix = "availability"
)

type Booking interface {
	Submit(ctx context.Context, req dto.SubmitBookingRequest, userID string) error
	ListForAdmin(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	MyBookings(ctx context.Context, req gDto.QueryParams, userID string) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Approve(ctx context.Context, req dto.ApproveBookingRequest, id string) error
	Reject(ctx context.Context, req dto.RejectBookingRequest, id string) error
}

type serviceImpl struct {
	repo             repository.Booking
	availabilityRepo availabilityRepo.Availability
	cfg              *config.Config
	cache            cache.RedisCache
	otel             otel.Otel
	kafka            kafka.Client
}

func New(repo repository.Booking, availabilityRepo availabilityRepo.Availability, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, kafka kafka.Client) Booking {
	return &serviceImpl{
		repo:             repo,
		availabilityRepo: availabilityRepo,
		cfg:              cfg,
		cache:            cache,
		otel:             otel,
		kafka:            kafka,
	}
}

func (s *serviceImpl) Submit(ctx context.Context, req dto.SubmitBookingRequest, userID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Submit")
	defer scope.End()
	defer scope.TraceIfError(err)

	checkIn, _ := time.Parse(constant.DateOnlyFormat, req.CheckIn)
	checkOut, _ := time.Parse(constant.DateOnlyFormat, req.CheckOut)

	if !checkOut.After(checkIn) {
		return failure.BadRequestFromString("check-out must be after check-in") // nolint:wrapcheck
	}

	today := timezone.Now().Truncate(24 * time.Hour)
	if checkIn.Before(today) {
		return failure.BadRequestFromString("check-in cannot be in the past") // nolint:wrapcheck
	}

	availability, err := s.availabilityRepo.Get(ctx, shared.FilterByID(req.AvailabilityID, availabilityModel.FieldID, availabilityModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get availability")

		return fmt.Errorf("failed to get availability: %w", err)
	}

	if availability.ID == constant.Empty {
		return failure.NotFound("availability not found") // nolint:wrapcheck
	}

	if !availability.IsActive {
		return failure.Conflict("guest house is not open for booking") // nolint:wrapcheck
	}

	booking := req.ToModel(availability, userID)

	err = s.repo.InsertWithReservation(ctx, booking)
	if errors.Is(err, repository.ErrNoRoomsAvailable) {
		return failure.Conflict("no rooms available for this guest house") // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to submit booking")

		return fmt.Errorf("failed to submit booking: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheAvailabilityPrefix)
	}()

	return nil
}

func (s *serviceImpl) ListForAdmin(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListForAdmin")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req.SortBy == constant.Empty {
		req.SortBy = constant.FieldCreatedAt
		req.SortDir = gDto.SortDirDesc
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	pending, err := s.repo.Count(ctx, statusFilter(constant.BookingStatusPending))
	if err != nil {
		log.Error().Err(err).Msg("failed to count pending bookings")

		return res, fmt.Errorf("failed to count pending bookings: %w", err)
	}

	approved, err := s.repo.Count(ctx, statusFilter(constant.BookingStatusApproved))
	if err != nil {
		log.Error().Err(err).Msg("failed to count approved bookings")

		return res, fmt.Errorf("failed to count approved bookings: %w", err)
	}

	rejected, err := s.repo.Count(ctx, statusFilter(constant.BookingStatusRejected))
	if err != nil {
		log.Error().Err(err).Msg("failed to count rejected bookings")

		return res, fmt.Errorf("failed to count rejected bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)
	res.TotalPending = pending
	res.TotalApproved = approved
	res.TotalRejected = rejected

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) MyBookings(ctx context.Context, req gDto.QueryParams, userID string) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MyBookings")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req.SortBy == constant.Empty {
		req.SortBy = constant.FieldCreatedAt
		req.SortDir = gDto.SortDirDesc
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldUserID,
				Operator: gDto.FilterOperatorEq,
				Value:    userID,
				Table:    model.TableName,
			},
		},
	}

	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(cacheGetAllBooking, userID), req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for my bookings")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return s.authorizeBookingAccess(ctx, res)
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return s.authorizeBookingAccess(ctx, res)
}

func (s *serviceImpl) Approve(ctx context.Context, req dto.ApproveBookingRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Approve")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	booking, err := s.getPendingBooking(ctx, id)
	if err != nil {
		return err
	}

	updatedFields := map[string]any{
		model.FieldStatus:        constant.BookingStatusApproved,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	if req.TotalAmount != nil {
		updatedFields[model.FieldTotalAmount] = *req.TotalAmount
	}

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to approve booking")

		return fmt.Errorf("failed to approve booking: %w", err)
	}

	s.publishDecision(ctx, booking, constant.BookingStatusApproved, nil)
	s.invalidateBookingCaches(ctx, booking, false)

	return nil
}

// Reject moves the booking to its terminal rejected state and returns the
// reserved room to the ledger in the same transaction.
func (s *serviceImpl) Reject(ctx context.Context, req dto.RejectBookingRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reject")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	booking, err := s.getPendingBooking(ctx, id)
	if err != nil {
		return err
	}

	updatedFields := map[string]any{
		model.FieldStatus:         constant.BookingStatusRejected,
		model.FieldRejectedReason: req.Reason,
		constant.FieldModifiedAt:  timezone.Now(),
		constant.FieldModifiedBy:  user,
	}

	if err = s.repo.UpdateWithRestore(ctx, updatedFields, id, booking.AvailabilityID); err != nil {
		log.Error().Err(err).Msg("failed to reject booking")

		return fmt.Errorf("failed to reject booking: %w", err)
	}

	s.publishDecision(ctx, booking, constant.BookingStatusRejected, &req.Reason)
	s.invalidateBookingCaches(ctx, booking, true)

	return nil
}

func (s *serviceImpl) getPendingBooking(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	// Approve and reject are one-shot: a resolved booking stays resolved.
	if booking.Status != constant.BookingStatusPending {
		return booking, failure.Conflict("booking already resolved") // nolint:wrapcheck
	}

	return booking, nil
}

// authorizeBookingAccess keeps members out of each other's bookings; admins
// see everything.
func (s *serviceImpl) authorizeBookingAccess(ctx context.Context, res dto.BookingResponse) (dto.BookingResponse, error) {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if role != constant.RoleAdmin && res.UserID != userID {
		return dto.BookingResponse{}, failure.ResourceRestrictedError
	}

	return res, nil
}

func (s *serviceImpl) publishDecision(ctx context.Context, booking model.Booking, status string, reason *string) {
	go func() {
		c := context.WithoutCancel(ctx)

		event := dto.BookingDecisionEvent{
			BookingID:  booking.ID,
			UserID:     booking.UserID,
			Email:      booking.RequesterEmail,
			GuestHouse: booking.GuestHouse,
			RoomType:   booking.RoomType,
			Status:     status,
			Reason:     reason,
			DecidedAt:  timezone.Now(),
		}

		if err := s.kafka.SendMessages(c, constant.KafkaTopicNotifications, kafka.Message{Key: booking.ID, Value: event}); err != nil {
			log.Error().Err(err).Str("bookingID", booking.ID).Msg("failed to publish booking decision")
		}
	}()
}

func (s *serviceImpl) invalidateBookingCaches(ctx context.Context, booking model.Booking, roomRestored bool) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, booking.ID)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)

		if roomRestored {
			shared.InvalidateCaches(c, s.cache, cacheAvailabilityPrefix)
		}
	}()
}

func statusFilter(status string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorEq,
				Value:    status,
				Table:    model.TableName,
			},
		},
	}
}
