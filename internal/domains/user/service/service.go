package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portal/config"
	"portal/infras/kafka"
	"portal/infras/otel"
	"portal/infras/s3"
	"portal/internal/domains/user/model"
	"portal/internal/domains/user/model/dto"
	"portal/internal/domains/user/repository"
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
	cacheGetMember    = "member:get"
	cacheGetAllMember = "member:gets"
	cacheCountMember  = "member:count"
)

type User interface {
	ListMembers(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetMembersResponse, error)
	ApproveMember(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (dto.MemberResponse, error)
	ProfileStatus(ctx context.Context, userID string) (dto.ProfileStatusResponse, error)
	CompleteFirstTime(ctx context.Context, req dto.CompleteProfileRequest, userID string) error
	ConfirmPosting(ctx context.Context, req dto.ConfirmPostingRequest, userID string) error
	UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest, userID string) error
}

type serviceImpl struct {
	repo  repository.User
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	s3    s3.S3
	kafka kafka.Client
}

func New(repo repository.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3, kafka kafka.Client) User {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		s3:    s3,
		kafka: kafka,
	}
}

func (s *serviceImpl) ListMembers(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetMembersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListMembers")
	defer scope.End()
	defer scope.TraceIfError(err)

	// Pending accounts surface first so approvals are not missed.
	if req.SortBy == constant.Empty {
		req.SortBy = fmt.Sprintf("%s ASC, %s", model.FieldIsApproved, constant.FieldCreatedAt)
		req.SortDir = gDto.SortDirDesc
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllMember, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for members")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count members")

		return res, fmt.Errorf("failed to count members: %w", err)
	}

	approved, err := s.repo.Count(ctx, approvalFilter(true))
	if err != nil {
		log.Error().Err(err).Msg("failed to count approved members")

		return res, fmt.Errorf("failed to count approved members: %w", err)
	}

	pending, err := s.repo.Count(ctx, approvalFilter(false))
	if err != nil {
		log.Error().Err(err).Msg("failed to count pending members")

		return res, fmt.Errorf("failed to count pending members: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get members")

		return res, fmt.Errorf("failed to get members: %w", err)
	}

	res.FromModels(models, total, req.Limit)
	res.TotalApproved = approved
	res.TotalPending = pending

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save members to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) ApproveMember(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ApproveMember")
	defer scope.End()
	defer scope.TraceIfError(err)

	admin, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	user, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get member")

		return fmt.Errorf("failed to get member: %w", err)
	}

	if user.ID == constant.Empty {
		return failure.NotFound("member not found") // nolint:wrapcheck
	}

	// Approving twice is a no-op, not an error.
	if user.IsApproved {
		return nil
	}

	now := timezone.Now()
	approval := approvalFields{IsApproved: true, ApprovedAt: now}
	updatedFields := shared.TransformFields(approval, admin)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to approve member")

		return fmt.Errorf("failed to approve member: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		event := dto.MemberApprovedEvent{
			UserID:     user.ID,
			Email:      user.Email,
			Name:       user.Name,
			ApprovedAt: timezone.Format(now, constant.DateFormat),
		}

		if err := s.kafka.SendMessages(c, constant.KafkaTopicNotifications, kafka.Message{Key: user.ID, Value: event}); err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("failed to publish member approved event")
		}

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetMember, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete member cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllMember)
		shared.InvalidateCaches(c, s.cache, cacheCountMember)
	}()

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.MemberResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetMember, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for member")

		return res, nil
	}

	user, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get member")

		return res, fmt.Errorf("failed to get member: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound("member not found") // nolint:wrapcheck
	}

	res.FromModel(user)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save member to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) ProfileStatus(ctx context.Context, userID string) (res dto.ProfileStatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ProfileStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, err := s.repo.Get(ctx, shared.FilterByID(userID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get member")

		return res, fmt.Errorf("failed to get member: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound("member not found") // nolint:wrapcheck
	}

	res.FromModel(user, timezone.Now())

	return res, nil
}

func (s *serviceImpl) CompleteFirstTime(ctx context.Context, req dto.CompleteProfileRequest, userID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CompleteFirstTime")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(userID, model.FieldID, model.TableName)

	user, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get member")

		return fmt.Errorf("failed to get member: %w", err)
	}

	if user.ID == constant.Empty {
		return failure.NotFound("member not found") // nolint:wrapcheck
	}

	if err = s.ensureEmployeeIDUnique(ctx, req.EmployeeID, userID); err != nil {
		return err
	}

	fields, err := req.ToFields(timezone.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to parse profile dates")

		return failure.BadRequestFromString(fmt.Sprintf("invalid date format: %v", err)) // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(fields, userID)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to complete profile")

		return fmt.Errorf("failed to complete profile: %w", err)
	}

	s.invalidateMemberCaches(ctx, userID)

	return nil
}

func (s *serviceImpl) ConfirmPosting(ctx context.Context, req dto.ConfirmPostingRequest, userID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ConfirmPosting")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(userID, model.FieldID, model.TableName)

	user, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get member")

		return fmt.Errorf("failed to get member: %w", err)
	}

	if user.ID == constant.Empty {
		return failure.NotFound("member not found") // nolint:wrapcheck
	}

	confirm := confirmPostingFields{
		Posting:                req.Posting,
		LastPostingConfirmedAt: timezone.Now(),
	}

	// Rolling history of one: the outgoing posting becomes the last place of
	// posting only when the posting actually changes.
	if user.Posting != nil && *user.Posting != constant.Empty && *user.Posting != req.Posting {
		confirm.LastPlaceOfPosting = *user.Posting
	}

	updatedFields := shared.TransformFields(confirm, userID)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to confirm posting")

		return fmt.Errorf("failed to confirm posting: %w", err)
	}

	s.invalidateMemberCaches(ctx, userID)

	return nil
}

func (s *serviceImpl) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest, userID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateProfile")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(userID, model.FieldID, model.TableName)

	user, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get member")

		return fmt.Errorf("failed to get member: %w", err)
	}

	if user.ID == constant.Empty {
		return failure.NotFound("member not found") // nolint:wrapcheck
	}

	if req.EmployeeID != constant.Empty {
		if err = s.ensureEmployeeIDUnique(ctx, req.EmployeeID, userID); err != nil {
			return err
		}
	}

	imageURL := constant.Empty
	var uploadedObjectName string
	bucketName := s.cfg.External.S3.BucketName

	if req.Image != nil {
		filename := uuid.NewString()

		parts := strings.Split(req.Image.Filename, ".")
		if len(parts) > 1 {
			filename = fmt.Sprintf("%s.%s", filename, parts[len(parts)-1])
		}

		url, err := s.s3.UploadFile(ctx, bucketName, model.EntityName, req.ImageFile, req.Image, filename)
		if err != nil {
			return fmt.Errorf("failed to upload image: %w", err)
		}

		imageURL = url
		uploadedObjectName = filename
	}

	updatedFields := shared.TransformFields(req, userID)

	if imageURL != constant.Empty {
		updatedFields[model.FieldImageURL] = imageURL
	}

	if err = addParsedDate(updatedFields, model.FieldDateOfBirth, req.DateOfBirth); err != nil {
		return failure.BadRequestFromString(fmt.Sprintf("invalid date format: %v", err)) // nolint:wrapcheck
	}

	if err = addParsedDate(updatedFields, model.FieldDateOfJoining, req.DateOfJoining); err != nil {
		return failure.BadRequestFromString(fmt.Sprintf("invalid date format: %v", err)) // nolint:wrapcheck
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update profile")

		if uploadedObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, uploadedObjectName)
		}

		return fmt.Errorf("failed to update profile: %w", err)
	}

	// Replaced images are best-effort deletes; a stale object is not an error.
	if imageURL != constant.Empty && user.ImageURL != nil && *user.ImageURL != constant.Empty {
		oldObjectName := s.s3.GetObjectNameFromURL(bucketName, *user.ImageURL)
		if oldObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, oldObjectName)
		}
	}

	s.invalidateMemberCaches(ctx, userID)

	return nil
}

func (s *serviceImpl) ensureEmployeeIDUnique(ctx context.Context, employeeID, userID string) error {
	duplicateFilter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldEmployeeID,
				Operator: gDto.FilterOperatorEq,
				Value:    employeeID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldID,
				Operator: gDto.FilterOperatorNotEq,
				Value:    userID,
				Table:    model.TableName,
			},
		},
	}

	exists, err := s.repo.Exist(ctx, duplicateFilter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check employee id uniqueness")

		return fmt.Errorf("failed to check employee id uniqueness: %w", err)
	}

	if exists {
		return failure.Conflict("employee id already in use") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) invalidateMemberCaches(ctx context.Context, userID string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetMember, userID)); err != nil {
			log.Error().Err(err).Msg("failed to delete member cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllMember)
		shared.InvalidateCaches(c, s.cache, cacheCountMember)
	}()
}

func approvalFilter(approved bool) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldIsApproved,
				Operator: gDto.FilterOperatorEq,
				Value:    approved,
				Table:    model.TableName,
			},
		},
	}
}

func addParsedDate(fields map[string]any, column, value string) error {
	if value == constant.Empty {
		return nil
	}

	parsed, err := timezone.Parse(constant.DateOnlyFormat, value)
	if err != nil {
		return err
	}

	fields[column] = parsed

	return nil
}

type approvalFields struct {
	IsApproved bool      `db:"is_approved"`
	ApprovedAt time.Time `db:"approved_at"`
}

type confirmPostingFields struct {
	Posting                string    `db:"posting"`
	LastPlaceOfPosting     string    `db:"last_place_of_posting"`
	LastPostingConfirmedAt time.Time `db:"last_posting_confirmed_at"`
}
