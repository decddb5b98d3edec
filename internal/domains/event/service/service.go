package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"portal/config"
	"portal/infras/otel"
	"portal/infras/s3"
	"portal/internal/domains/event/model"
	"portal/internal/domains/event/model/dto"
	"portal/internal/domains/event/repository"
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
	cacheGetEvent    = "event:get"
	cacheGetAllEvent = "event:gets"
	cacheCountEvent  = "event:count"
)

type Event interface {
	Create(ctx context.Context, req dto.CreateEventRequest) error
	List(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetEventsResponse, error)
	Get(ctx context.Context, id string) (dto.EventResponse, error)
	Update(ctx context.Context, req dto.UpdateEventRequest, id string) error
	Delete(ctx context.Context, id string) error
	UploadImage(ctx context.Context, req dto.UploadEventImageRequest, eventID string) (dto.EventImageResponse, error)
}

type serviceImpl struct {
	repo      repository.Event
	imageRepo repository.EventImage
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	s3        s3.S3
}

func New(repo repository.Event, imageRepo repository.EventImage, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) Event {
	return &serviceImpl{
		repo:      repo,
		imageRepo: imageRepo,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		s3:        s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateEventRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	bucketName := s.cfg.External.S3.BucketName

	imageURL := constant.Empty
	var uploadedObjectName string

	if req.Image != nil {
		imageURL, uploadedObjectName, err = s.uploadObject(ctx, req.ImageFile, req.Image)
		if err != nil {
			return err
		}
	}

	if err = s.repo.Insert(ctx, req.ToModel(user, imageURL)); err != nil {
		log.Error().Err(err).Msg("failed to create event")

		if uploadedObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, uploadedObjectName)
		}

		return fmt.Errorf("failed to create event: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllEvent)
		shared.InvalidateCaches(c, s.cache, cacheCountEvent)
	}()

	return nil
}

func (s *serviceImpl) List(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetEventsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".List")
	defer scope.End()
	defer scope.TraceIfError(err)

	// Featured events lead, then newest by event date.
	if req.SortBy == constant.Empty {
		req.SortBy = fmt.Sprintf("%s DESC, %s", model.FieldIsFeatured, model.FieldEventDate)
		req.SortDir = gDto.SortDirDesc
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllEvent, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for events")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count events")

		return res, fmt.Errorf("failed to count events: %w", err)
	}

	events, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get events")

		return res, fmt.Errorf("failed to get events: %w", err)
	}

	res.FromModels(events, total, req.Limit)

	if err = s.attachImages(ctx, events, &res); err != nil {
		return res, err
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save events to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.EventResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetEvent, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for event")

		return res, nil
	}

	event, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get event")

		return res, fmt.Errorf("failed to get event: %w", err)
	}

	if event.ID == constant.Empty {
		return res, failure.NotFound("event not found") // nolint:wrapcheck
	}

	res.FromModel(event)

	images, err := s.imageRepo.GetAll(ctx, imageOrder(), imageFilter(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get event images")

		return res, fmt.Errorf("failed to get event images: %w", err)
	}

	res.AttachImages(images)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save event to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateEventRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)
	bucketName := s.cfg.External.S3.BucketName

	event, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get event")

		return fmt.Errorf("failed to get event: %w", err)
	}

	if event.ID == constant.Empty {
		return failure.NotFound("event not found") // nolint:wrapcheck
	}

	imageURL := constant.Empty
	var uploadedObjectName string

	if req.Image != nil {
		imageURL, uploadedObjectName, err = s.uploadObject(ctx, req.ImageFile, req.Image)
		if err != nil {
			return err
		}
	}

	updatedFields := shared.TransformFields(req, user)

	if imageURL != constant.Empty {
		updatedFields[model.FieldImageURL] = imageURL
	}

	if req.EventDate != constant.Empty {
		eventDate, err := timezone.Parse(constant.DateOnlyFormat, req.EventDate)
		if err != nil {
			return failure.BadRequestFromString(fmt.Sprintf("invalid date format: %v", err)) // nolint:wrapcheck
		}

		updatedFields[model.FieldEventDate] = eventDate
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update event")

		if uploadedObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, uploadedObjectName)
		}

		return fmt.Errorf("failed to update event: %w", err)
	}

	// The replaced cover image is a best-effort delete; a stale object is not
	// an error.
	if imageURL != constant.Empty && event.ImageURL != nil && *event.ImageURL != constant.Empty {
		oldObjectName := s.s3.GetObjectNameFromURL(bucketName, *event.ImageURL)
		if oldObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, oldObjectName)
		}
	}

	s.invalidateEventCaches(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	event, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get event")

		return fmt.Errorf("failed to get event: %w", err)
	}

	if event.ID == constant.Empty {
		return failure.NotFound("event not found") // nolint:wrapcheck
	}

	images, err := s.imageRepo.GetAll(ctx, imageOrder(), imageFilter(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get event images")

		return fmt.Errorf("failed to get event images: %w", err)
	}

	// The gallery rows go with the event via FK cascade.
	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete event")

		return fmt.Errorf("failed to delete event: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		s.deleteOrphanedObjects(c, event, images)
	}()

	s.invalidateEventCaches(ctx, id)

	return nil
}

func (s *serviceImpl) UploadImage(ctx context.Context, req dto.UploadEventImageRequest, eventID string) (res dto.EventImageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadImage")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	bucketName := s.cfg.External.S3.BucketName

	exist, err := s.repo.Exist(ctx, shared.FilterByID(eventID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check event existence")

		return res, fmt.Errorf("failed to check event existence: %w", err)
	}

	if !exist {
		return res, failure.NotFound("event not found") // nolint:wrapcheck
	}

	imageURL, uploadedObjectName, err := s.uploadObject(ctx, req.ImageFile, req.Image)
	if err != nil {
		return res, err
	}

	image := req.ToModel(eventID, imageURL, user)

	if err = s.imageRepo.Insert(ctx, image); err != nil {
		log.Error().Err(err).Msg("failed to save event image")

		_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, uploadedObjectName)

		return res, fmt.Errorf("failed to save event image: %w", err)
	}

	res.FromModel(image)

	s.invalidateEventCaches(ctx, eventID)

	return res, nil
}

// uploadObject stores the file under a uuid object name with the original
// extension preserved.
func (s *serviceImpl) uploadObject(ctx context.Context, file multipart.File, header *multipart.FileHeader) (url, objectName string, err error) {
	objectName = uuid.NewString()

	parts := strings.Split(header.Filename, ".")
	if len(parts) > 1 {
		objectName = fmt.Sprintf("%s.%s", objectName, parts[len(parts)-1])
	}

	url, err = s.s3.UploadFile(ctx, s.cfg.External.S3.BucketName, model.EntityName, file, header, objectName)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload image")

		return constant.Empty, constant.Empty, fmt.Errorf("failed to upload image: %w", err)
	}

	return url, objectName, nil
}

func (s *serviceImpl) attachImages(ctx context.Context, events []model.Event, res *dto.GetEventsResponse) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]string, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}

	images, err := s.imageRepo.GetAll(ctx, imageOrder(), gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldImageEventID,
				Operator: gDto.FilterOperatorIn,
				Value:    ids,
				Table:    model.ImageTableName,
			},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to get event images")

		return fmt.Errorf("failed to get event images: %w", err)
	}

	byEvent := map[string][]model.EventImage{}
	for _, image := range images {
		byEvent[image.EventID] = append(byEvent[image.EventID], image)
	}

	for i := range res.Events {
		res.Events[i].AttachImages(byEvent[res.Events[i].ID])
	}

	return nil
}

func (s *serviceImpl) deleteOrphanedObjects(ctx context.Context, event model.Event, images []model.EventImage) {
	bucketName := s.cfg.External.S3.BucketName

	urls := make([]string, 0, len(images)+1)
	if event.ImageURL != nil && *event.ImageURL != constant.Empty {
		urls = append(urls, *event.ImageURL)
	}

	for _, image := range images {
		urls = append(urls, image.ImageURL)
	}

	for _, url := range urls {
		objectName := s.s3.GetObjectNameFromURL(bucketName, url)
		if objectName == constant.Empty {
			log.Warn().Str("url", url).Msg("failed to extract object name from URL")

			continue
		}

		if err := s.s3.DeleteFile(ctx, bucketName, model.EntityName, objectName); err != nil {
			log.Error().Err(err).Str("objectName", objectName).Msg("failed to delete file from S3")
		}
	}
}

func (s *serviceImpl) invalidateEventCaches(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetEvent, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete event cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllEvent)
		shared.InvalidateCaches(c, s.cache, cacheCountEvent)
	}()
}

func imageOrder() gDto.QueryParams {
	return gDto.QueryParams{
		SortBy:  model.FieldDisplayOrder,
		SortDir: gDto.SortDirAsc,
	}
}

func imageFilter(eventID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldImageEventID,
				Operator: gDto.FilterOperatorEq,
				Value:    eventID,
				Table:    model.ImageTableName,
			},
		},
	}
}
