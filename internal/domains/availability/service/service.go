package service

import (
	"context"
	"fmt"

	"portal/config"
	"portal/infras/otel"
	"portal/internal/domains/availability/model"
	"portal/internal/domains/availability/model/dto"
	"portal/internal/domains/availability/repository"
	bookingModel "portal/internal/domains/booking/model"
	bookingRepo "portal/internal/domains/booking/repository"
	"portal/shared"
	"portal/shared/cache"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	"portal/shared/failure"
	"portal/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetAvailability    = "availability:get"
	cacheGetAllAvailability = "availability:gets"
	cacheCountAvailability  = "availability:count"
)

type Availability interface {
	Create(ctx context.Context, req dto.CreateAvailabilityRequest) error
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAvailabilitiesResponse, error)
	ListActive(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAvailabilitiesResponse, error)
	Get(ctx context.Context, id string) (dto.AvailabilityResponse, error)
	Update(ctx context.Context, req dto.UpdateAvailabilityRequest, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo        repository.Availability
	bookingRepo bookingRepo.Booking
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(repo repository.Availability, bookingRepo bookingRepo.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Availability {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateAvailabilityRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	exists, err := s.repo.Exist(ctx, pairFilter(req.GuestHouse, req.RoomType))
	if err != nil {
		log.Error().Err(err).Msg("failed to check availability uniqueness")

		return fmt.Errorf("failed to check availability uniqueness: %w", err)
	}

	if exists {
		return failure.Conflict("room type already exists for this guest house") // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, req.ToModel(user)); err != nil {
		log.Error().Err(err).Msg("failed to create availability")

		return fmt.Errorf("failed to create availability: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllAvailability)
		shared.InvalidateCaches(c, s.cache, cacheCountAvailability)
	}()

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAvailabilitiesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	// Admin listing: active rows first, newest within each group.
	if req.SortBy == constant.Empty {
		req.SortBy = fmt.Sprintf("%s DESC, %s", model.FieldIsActive, constant.FieldCreatedAt)
		req.SortDir = gDto.SortDirDesc
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllAvailability, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for availabilities")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count availabilities")

		return res, fmt.Errorf("failed to count availabilities: %w", err)
	}

	active, err := s.repo.Count(ctx, activeStateFilter(true))
	if err != nil {
		log.Error().Err(err).Msg("failed to count active availabilities")

		return res, fmt.Errorf("failed to count active availabilities: %w", err)
	}

	inactive, err := s.repo.Count(ctx, activeStateFilter(false))
	if err != nil {
		log.Error().Err(err).Msg("failed to count inactive availabilities")

		return res, fmt.Errorf("failed to count inactive availabilities: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get availabilities")

		return res, fmt.Errorf("failed to get availabilities: %w", err)
	}

	res.FromModels(models, total, req.Limit)
	res.TotalActive = active
	res.TotalInactive = inactive

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save availabilities to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) ListActive(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAvailabilitiesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListActive")
	defer scope.End()
	defer scope.TraceIfError(err)

	// Booking read path: only active rows with at least one free room, in a
	// stable guest-house then room-type order.
	filter.Operator = gDto.FilterGroupOperatorAnd
	filter.Filters = append(filter.Filters,
		gDto.Filter{
			Field:    model.FieldIsActive,
			Operator: gDto.FilterOperatorEq,
			Value:    true,
			Table:    model.TableName,
		},
		gDto.Filter{
			Field:    model.FieldAvailableRooms,
			Operator: gDto.FilterOperatorGreaterEq,
			Value:    1,
			Table:    model.TableName,
		},
	)

	req.SortBy = fmt.Sprintf("%s ASC, %s", model.FieldGuestHouse, model.FieldRoomType)
	req.SortDir = gDto.SortDirAsc

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllAvailability, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for active availabilities")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count active availabilities")

		return res, fmt.Errorf("failed to count active availabilities: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get active availabilities")

		return res, fmt.Errorf("failed to get active availabilities: %w", err)
	}

	res.FromModels(models, total, req.Limit)
	res.TotalActive = total

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save active availabilities to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetAvailability, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for availability")

		return res, nil
	}

	availability, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get availability")

		return res, fmt.Errorf("failed to get availability: %w", err)
	}

	if availability.ID == constant.Empty {
		return res, failure.NotFound("availability not found") // nolint:wrapcheck
	}

	res.FromModel(availability)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save availability to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateAvailabilityRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get availability")

		return fmt.Errorf("failed to get availability: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound("availability not found") // nolint:wrapcheck
	}

	targetGuestHouse := current.GuestHouse
	if req.GuestHouse != constant.Empty {
		targetGuestHouse = req.GuestHouse
	}

	targetRoomType := current.RoomType
	if req.RoomType != constant.Empty {
		targetRoomType = req.RoomType
	}

	if targetGuestHouse != current.GuestHouse || targetRoomType != current.RoomType {
		pair := pairFilter(targetGuestHouse, targetRoomType)
		pair.Filters = append(pair.Filters, gDto.Filter{
			Field:    model.FieldID,
			Operator: gDto.FilterOperatorNotEq,
			Value:    id,
			Table:    model.TableName,
		})

		exists, err := s.repo.Exist(ctx, pair)
		if err != nil {
			log.Error().Err(err).Msg("failed to check availability uniqueness")

			return fmt.Errorf("failed to check availability uniqueness: %w", err)
		}

		if exists {
			return failure.Conflict("room type already exists for this guest house") // nolint:wrapcheck
		}
	}

	updatedFields := shared.TransformFields(req, user)

	if req.TotalRooms != nil && *req.TotalRooms != current.TotalRooms {
		updatedFields[model.FieldAvailableRooms] = model.ResizeAvailable(current.TotalRooms, current.AvailableRooms, *req.TotalRooms)
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update availability")

		return fmt.Errorf("failed to update availability: %w", err)
	}

	s.invalidateAvailabilityCaches(ctx, id)

	return nil
}

func (s *serviceImpl) SetActive(ctx context.Context, id string, active bool) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetActive")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get availability")

		return fmt.Errorf("failed to get availability: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound("availability not found") // nolint:wrapcheck
	}

	// Deactivation is blocked while bookings still depend on the row.
	if !active {
		if err = s.ensureNoActiveBookings(ctx, id); err != nil {
			return err
		}
	}

	updatedFields := map[string]any{
		model.FieldIsActive:      active,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to toggle availability")

		return fmt.Errorf("failed to toggle availability: %w", err)
	}

	s.invalidateAvailabilityCaches(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	exist, err := s.repo.Exist(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if availability exists")

		return fmt.Errorf("failed to check if availability exists: %w", err)
	}

	if !exist {
		return failure.NotFound("availability not found") // nolint:wrapcheck
	}

	if err = s.ensureNoActiveBookings(ctx, id); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete availability")

		return fmt.Errorf("failed to delete availability: %w", err)
	}

	s.invalidateAvailabilityCaches(ctx, id)

	return nil
}

// ensureNoActiveBookings guards destructive ledger operations: a row with a
// pending or approved booking whose stay has not ended yet must stay put.
func (s *serviceImpl) ensureNoActiveBookings(ctx context.Context, availabilityID string) error {
	activeFilter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    bookingModel.FieldAvailabilityID,
				Operator: gDto.FilterOperatorEq,
				Value:    availabilityID,
				Table:    bookingModel.TableName,
			},
			gDto.Filter{
				Field:    bookingModel.FieldStatus,
				Operator: gDto.FilterOperatorIn,
				Value:    []string{constant.BookingStatusPending, constant.BookingStatusApproved},
				Table:    bookingModel.TableName,
			},
			gDto.Filter{
				Field:    bookingModel.FieldCheckOut,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    timezone.Now(),
				Table:    bookingModel.TableName,
			},
		},
	}

	hasActive, err := s.bookingRepo.Exist(ctx, activeFilter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check active bookings")

		return fmt.Errorf("failed to check active bookings: %w", err)
	}

	if hasActive {
		return failure.Conflict("guest house has active bookings") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) invalidateAvailabilityCaches(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetAvailability, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete availability cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllAvailability)
		shared.InvalidateCaches(c, s.cache, cacheCountAvailability)
	}()
}

func pairFilter(guestHouse, roomType string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldGuestHouse,
				Operator: gDto.FilterOperatorEq,
				Value:    guestHouse,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldRoomType,
				Operator: gDto.FilterOperatorEq,
				Value:    roomType,
				Table:    model.TableName,
			},
		},
	}
}

func activeStateFilter(active bool) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldIsActive,
				Operator: gDto.FilterOperatorEq,
				Value:    active,
				Table:    model.TableName,
			},
		},
	}
}
