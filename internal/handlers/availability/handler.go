package availability

import (
	"net/http"
	"portal/infras/otel"
	"portal/internal/domains/availability/model"
	"portal/internal/domains/availability/model/dto"
	"portal/internal/domains/availability/service"
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
	service    service.Availability
	otel       otel.Otel
	middleware middleware.AuthRole
}

func New(service service.Availability, otel otel.Otel, middleware middleware.AuthRole) Handler {
	return Handler{
		service:    service,
		otel:       otel,
		middleware: middleware,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/availabilities", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Auth)

		routerGroup.Get("/", handler.GetActiveAvailabilities)
	})

	router.Route("/guest-houses", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Auth, handler.middleware.RBAC)

		routerGroup.Post("/", handler.CreateAvailability)
		routerGroup.Get("/", handler.GetAvailabilities)
		routerGroup.Get("/{id}", handler.GetAvailabilityByID)
		routerGroup.Put("/{id}", handler.UpdateAvailability)
		routerGroup.Patch("/{id}/toggle", handler.ToggleAvailability)
		routerGroup.Delete("/{id}", handler.DeleteAvailability)
	})
}

// GetActiveAvailabilities lists the bookable inventory.
// @Summary Get active availabilities
// @Description Retrieve active guest house rows with free rooms, for the booking form.
// @Tags Availability
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param guest_house query string false "Filter by guest house"
// @Param room_type query string false "Filter by room type"
// @Success 200 {object} dto.GetAvailabilitiesResponse "List of availabilities"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availabilities [get]
// @Security BearerAuth
func (handler *Handler) GetActiveAvailabilities(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetActiveAvailabilities")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
	}

	if guestHouse := r.URL.Query().Get(model.FieldGuestHouse); guestHouse != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldGuestHouse,
			Operator: gDto.FilterOperatorEq,
			Value:    guestHouse,
			Table:    model.TableName,
		})
	}

	if roomType := r.URL.Query().Get(model.FieldRoomType); roomType != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldRoomType,
			Operator: gDto.FilterOperatorEq,
			Value:    roomType,
			Table:    model.TableName,
		})
	}

	availabilities, err := handler.service.ListActive(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get active availabilities")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Active availabilities retrieved successfully")

	response.WithJSON(w, http.StatusOK, availabilities)
}

// CreateAvailability opens a new inventory row.
// @Summary Create a guest house availability
// @Description Create a guest house room type row; every room starts free.
// @Tags GuestHouse
// @Accept json
// @Produce json
// @Param request body dto.CreateAvailabilityRequest true "Create Availability Request"
// @Success 201 {object} response.Message "Availability created successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/guest-houses [post]
// @Security BearerAuth
func (handler *Handler) CreateAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAvailability")
	defer scope.End()

	req := dto.CreateAvailabilityRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create availability")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Availability created successfully by user " + user)

	response.WithMessage(w, http.StatusCreated, "Availability created successfully")
}

// GetAvailabilities lists all inventory rows for admins.
// @Summary Get all availabilities
// @Description Retrieve all guest house rows, active first, with state counts.
// @Tags GuestHouse
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param guest_house query string false "Filter by guest house"
// @Param is_active query boolean false "Filter by active state"
// @Success 200 {object} dto.GetAvailabilitiesResponse "List of availabilities"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/guest-houses [get]
// @Security BearerAuth
func (handler *Handler) GetAvailabilities(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailabilities")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
	}

	if guestHouse := r.URL.Query().Get(model.FieldGuestHouse); guestHouse != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldGuestHouse,
			Operator: gDto.FilterOperatorLike,
			Value:    guestHouse,
			Table:    model.TableName,
		})
	}

	if active := shared.ConvertStringToBool(r.URL.Query().Get(model.FieldIsActive)); active != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldIsActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	availabilities, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get availabilities")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availabilities retrieved successfully")

	response.WithJSON(w, http.StatusOK, availabilities)
}

// GetAvailabilityByID retrieves one inventory row.
// @Summary Get an availability by ID
// @Description Retrieve a guest house availability by its unique identifier.
// @Tags GuestHouse
// @Accept json
// @Produce json
// @Param id path string true "Availability ID"
// @Success 200 {object} dto.AvailabilityResponse "Availability details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/guest-houses/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetAvailabilityByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailabilityByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	availability, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get availability by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availability retrieved successfully")

	response.WithJSON(w, http.StatusOK, availability)
}

// UpdateAvailability edits an inventory row.
// @Summary Update an availability by ID
// @Description Update a guest house row; resizing total rooms shifts the free count by the same delta.
// @Tags GuestHouse
// @Accept json
// @Produce json
// @Param id path string true "Availability ID"
// @Param request body dto.UpdateAvailabilityRequest true "Update Availability Request"
// @Success 200 {object} response.Message "Availability updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/guest-houses/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateAvailability")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateAvailabilityRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update availability")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Availability updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Availability updated successfully")
}

// ToggleAvailability switches a row between active and inactive.
// @Summary Toggle an availability by ID
// @Description Activate or deactivate a guest house row. Deactivation is blocked while bookings are active.
// @Tags GuestHouse
// @Accept json
// @Produce json
// @Param id path string true "Availability ID"
// @Param request body dto.ToggleAvailabilityRequest true "Toggle Availability Request"
// @Success 200 {object} response.Message "Availability toggled successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/guest-houses/{id}/toggle [patch]
// @Security BearerAuth
func (handler *Handler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ToggleAvailability")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.ToggleAvailabilityRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.SetActive(ctx, id, *req.Active); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to toggle availability")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Availability toggled successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Availability toggled successfully")
}

// DeleteAvailability removes an inventory row.
// @Summary Delete an availability by ID
// @Description Delete a guest house row. Blocked while bookings are active.
// @Tags GuestHouse
// @Accept json
// @Produce json
// @Param id path string true "Availability ID"
// @Success 200 {object} response.Message "Availability deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/guest-houses/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteAvailability")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete availability")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Availability deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Availability deleted successfully")
}
