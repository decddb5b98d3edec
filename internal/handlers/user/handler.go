package user

import (
	"net/http"
	"portal/infras/otel"
	"portal/internal/domains/user/model"
	"portal/internal/domains/user/model/dto"
	"portal/internal/domains/user/service"
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
	service    service.User
	otel       otel.Otel
	middleware middleware.AuthRole
}

func New(service service.User, otel otel.Otel, middleware middleware.AuthRole) Handler {
	return Handler{
		service:    service,
		otel:       otel,
		middleware: middleware,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/members", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Auth, handler.middleware.RBAC)

		routerGroup.Get("/", handler.GetMembers)
		routerGroup.Get("/{id}", handler.GetMemberByID)
		routerGroup.Patch("/{id}/approve", handler.ApproveMember)
	})

	router.Route("/profile", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Auth)

		routerGroup.Get("/status", handler.GetProfileStatus)
		routerGroup.Post("/complete-first-time", handler.CompleteProfileFirstTime)
		routerGroup.Post("/confirm-posting", handler.ConfirmPosting)
		routerGroup.Patch("/", handler.UpdateProfile)
	})
}

// GetMembers retrieves all member accounts.
// @Summary Get all members
// @Description Retrieve all member accounts, pending approvals first.
// @Tags Member
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param is_approved query boolean false "Filter by approval state"
// @Success 200 {object} dto.GetMembersResponse "List of members"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/members [get]
// @Security BearerAuth
func (handler *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMembers")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
	}

	if name := r.URL.Query().Get(model.FieldName); name != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	if approved := shared.ConvertStringToBool(r.URL.Query().Get(model.FieldIsApproved)); approved != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldIsApproved,
			Operator: gDto.FilterOperatorEq,
			Value:    *approved,
			Table:    model.TableName,
		})
	}

	members, err := handler.service.ListMembers(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get members")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Members retrieved successfully")

	response.WithJSON(w, http.StatusOK, members)
}

// GetMemberByID retrieves a member by its ID.
// @Summary Get a member by ID
// @Description Retrieve a member account by its unique identifier.
// @Tags Member
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} dto.MemberResponse "Member details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/members/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetMemberByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMemberByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	member, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get member by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Member retrieved successfully")

	response.WithJSON(w, http.StatusOK, member)
}

// ApproveMember approves a pending member account.
// @Summary Approve a member
// @Description Approve a pending member account. Approving twice is a no-op.
// @Tags Member
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Message "Member approved successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/members/{id}/approve [patch]
// @Security BearerAuth
func (handler *Handler) ApproveMember(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ApproveMember")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.ApproveMember(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to approve member")

		response.WithError(w, err)

		return
	}

	admin, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Member approved successfully by user " + admin)

	response.WithMessage(w, http.StatusOK, "Member approved successfully")
}

// GetProfileStatus reports the completeness gate for the authenticated user.
// @Summary Get profile status
// @Description Report whether the profile needs first-time completion or a monthly posting confirmation.
// @Tags Profile
// @Accept json
// @Produce json
// @Success 200 {object} dto.ProfileStatusResponse "Profile status"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/profile/status [get]
// @Security BearerAuth
func (handler *Handler) GetProfileStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetProfileStatus")
	defer scope.End()

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	status, err := handler.service.ProfileStatus(ctx, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get profile status")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Profile status retrieved successfully")

	response.WithJSON(w, http.StatusOK, status)
}

// CompleteProfileFirstTime fills in the required profile fields in one shot.
// @Summary Complete profile for the first time
// @Description Complete the required profile fields; this also records the first posting confirmation.
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body dto.CompleteProfileRequest true "Complete Profile Request"
// @Success 200 {object} response.Message "Profile completed successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/profile/complete-first-time [post]
// @Security BearerAuth
func (handler *Handler) CompleteProfileFirstTime(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CompleteProfileFirstTime")
	defer scope.End()

	req := dto.CompleteProfileRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err := handler.service.CompleteFirstTime(ctx, req, userID); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to complete profile")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Profile completed successfully")

	response.WithMessage(w, http.StatusOK, "Profile completed successfully")
}

// ConfirmPosting records the monthly posting confirmation.
// @Summary Confirm current posting
// @Description Confirm the current place of posting for this calendar month.
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body dto.ConfirmPostingRequest true "Confirm Posting Request"
// @Success 200 {object} response.Message "Posting confirmed successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/profile/confirm-posting [post]
// @Security BearerAuth
func (handler *Handler) ConfirmPosting(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConfirmPosting")
	defer scope.End()

	req := dto.ConfirmPostingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err := handler.service.ConfirmPosting(ctx, req, userID); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to confirm posting")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Posting confirmed successfully")

	response.WithMessage(w, http.StatusOK, "Posting confirmed successfully")
}

// UpdateProfile updates the authenticated user's profile.
// @Summary Update profile
// @Description Update profile fields; accepts multipart form data with an optional profile image.
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Param name formData string false "Name"
// @Param phone formData string false "Phone"
// @Param designation formData string false "Designation"
// @Param employee_id formData string false "Employee ID"
// @Param date_of_birth formData string false "Date of birth (YYYY-MM-DD)"
// @Param date_of_joining formData string false "Date of joining (YYYY-MM-DD)"
// @Param image formData file false "Profile image"
// @Success 200 {object} response.Message "Profile updated successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/profile [patch]
// @Security BearerAuth
func (handler *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateProfile")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, err)

		return
	}

	req := dto.UpdateProfileRequest{
		Name:                     r.FormValue("name"),
		Phone:                    r.FormValue("phone"),
		Designation:              r.FormValue("designation"),
		BloodGroup:               r.FormValue("blood_group"),
		EmployeeID:               r.FormValue("employee_id"),
		EmergencyContactName:     r.FormValue("emergency_contact_name"),
		EmergencyContactPhone:    r.FormValue("emergency_contact_phone"),
		EmergencyContactRelation: r.FormValue("emergency_contact_relation"),
		InsuranceNomineeName:     r.FormValue("insurance_nominee_name"),
		InsuranceNomineePhone:    r.FormValue("insurance_nominee_phone"),
		InsuranceNomineeRelation: r.FormValue("insurance_nominee_relation"),
		DateOfBirth:              r.FormValue("date_of_birth"),
		DateOfJoining:            r.FormValue("date_of_joining"),
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

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err := handler.service.UpdateProfile(ctx, req, userID); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update profile")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Profile updated successfully")

	response.WithMessage(w, http.StatusOK, "Profile updated successfully")
}
