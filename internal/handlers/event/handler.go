package event

import (
	"net/http"
	"portal/infras/otel"
	"portal/internal/domains/event/model"
	"portal/internal/domains/event/model/dto"
	"portal/internal/domains/event/service"
	"portal/shared"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	"portal/shared/validator"
	"portal/transport/http/middleware"
	"portal/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Event
	otel       otel.Otel
	middleware middleware.AuthRole
}

func New(service service.Event, otel otel.Otel, middleware middleware.AuthRole) Handler {
	return Handler{
		service:    service,
		otel:       otel,
		middleware: middleware,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/events", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Auth, handler.middleware.RBAC)

		routerGroup.Get("/", handler.GetEvents)
		routerGroup.Post("/", handler.CreateEvent)
		routerGroup.Get("/{id}", handler.GetEventByID)
		routerGroup.Put("/{id}", handler.UpdateEvent)
		routerGroup.Delete("/{id}", handler.DeleteEvent)
		routerGroup.Post("/{id}/images", handler.UploadEventImage)
	})
}

// GetEvents lists events.
// @Summary Get events
// @Description Retrieve published events, featured first then newest. Admins can include unpublished events.
// @Tags Event
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param is_featured query boolean false "Filter by featured flag"
// @Param include_unpublished query boolean false "Include unpublished events (admin only)"
// @Success 200 {object} dto.GetEventsResponse "List of events"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/events [get]
// @Security BearerAuth
func (handler *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEvents")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
	}

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	includeUnpublished := shared.ConvertStringToBool(r.URL.Query().Get("include_unpublished"))

	if role != constant.RoleAdmin || includeUnpublished == nil || !*includeUnpublished {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldIsPublished,
			Operator: gDto.FilterOperatorEq,
			Value:    true,
			Table:    model.TableName,
		})
	}

	if featured := shared.ConvertStringToBool(r.URL.Query().Get(model.FieldIsFeatured)); featured != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldIsFeatured,
			Operator: gDto.FilterOperatorEq,
			Value:    *featured,
			Table:    model.TableName,
		})
	}

	events, err := handler.service.List(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get events")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Events retrieved successfully")

	response.WithJSON(w, http.StatusOK, events)
}

// CreateEvent creates a new event.
// @Summary Create an event
// @Description Create an event with an optional cover image.
// @Tags Event
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Event title"
// @Param description formData string true "Event description"
// @Param event_date formData string true "Event date (YYYY-MM-DD)"
// @Param location formData string true "Event location"
// @Param is_featured formData boolean false "Featured flag"
// @Param is_published formData boolean false "Published flag"
// @Param image formData file false "Cover image"
// @Success 201 {object} response.Message "Event created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/events [post]
// @Security BearerAuth
func (handler *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateEvent")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, err)

		return
	}

	req := dto.CreateEventRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		EventDate:   r.FormValue("event_date"),
		Location:    r.FormValue("location"),
	}

	if featured := shared.ConvertStringToBool(r.FormValue("is_featured")); featured != nil {
		req.IsFeatured = *featured
	}

	if published := shared.ConvertStringToBool(r.FormValue("is_published")); published != nil {
		req.IsPublished = *published
	}

	file, fileHeader, err := r.FormFile("image")
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create event")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Event created successfully by user " + user)

	response.WithMessage(w, http.StatusCreated, "Event created successfully")
}

// GetEventByID retrieves an event with its gallery.
// @Summary Get an event by ID
// @Description Retrieve an event with its ordered gallery images.
// @Tags Event
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.EventResponse "Event details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/events/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetEventByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEventByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	event, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get event by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Event retrieved successfully")

	response.WithJSON(w, http.StatusOK, event)
}

// UpdateEvent updates an event.
// @Summary Update an event by ID
// @Description Update event fields; a new cover image replaces the old one.
// @Tags Event
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Event ID"
// @Param title formData string false "Event title"
// @Param description formData string false "Event description"
// @Param event_date formData string false "Event date (YYYY-MM-DD)"
// @Param location formData string false "Event location"
// @Param is_featured formData boolean false "Featured flag"
// @Param is_published formData boolean false "Published flag"
// @Param image formData file false "Cover image"
// @Success 200 {object} response.Message "Event updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/events/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateEvent")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, err)

		return
	}

	req := dto.UpdateEventRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		EventDate:   r.FormValue("event_date"),
	}

	req.IsFeatured = shared.ConvertStringToBool(r.FormValue("is_featured"))
	req.IsPublished = shared.ConvertStringToBool(r.FormValue("is_published"))

	file, fileHeader, err := r.FormFile("image")
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update event")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Event updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Event updated successfully")
}

// DeleteEvent deletes an event and its gallery.
// @Summary Delete an event by ID
// @Description Delete an event; gallery rows cascade and stored objects are removed best effort.
// @Tags Event
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Message "Event deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/events/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteEvent")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete event")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Event deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Event deleted successfully")
}

// UploadEventImage adds a gallery image to an event.
// @Summary Upload an event image
// @Description Upload a gallery image for an event.
// @Tags Event
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Event ID"
// @Param caption formData string false "Image caption"
// @Param display_order formData integer false "Display order"
// @Param image formData file true "Image file"
// @Success 201 {object} dto.EventImageResponse "Event image uploaded successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/events/{id}/images [post]
// @Security BearerAuth
func (handler *Handler) UploadEventImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadEventImage")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, err)

		return
	}

	req := dto.UploadEventImageRequest{}

	if caption := r.FormValue("caption"); caption != constant.Empty {
		req.Caption = &caption
	}

	if orderStr := r.FormValue("display_order"); orderStr != constant.Empty {
		if order, err := shared.ConvertStringToInt(orderStr); err == nil {
			req.DisplayOrder = order
		}
	}

	file, fileHeader, err := r.FormFile("image")
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	image, err := handler.service.UploadImage(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload event image")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Event image uploaded successfully by user " + user)

	response.WithJSON(w, http.StatusCreated, image)
}
