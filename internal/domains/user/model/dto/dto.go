package dto

import (
	"mime/multipart"
	"time"

	"portal/internal/domains/user/model"
	"portal/shared"
	"portal/shared/constant"
	gDto "portal/shared/dto"
	"portal/shared/timezone"
)

type MemberResponse struct {
	ID                       string  `json:"id"`
	Email                    string  `json:"email"`
	Name                     string  `json:"name"`
	Phone                    *string `json:"phone,omitempty"`
	Designation              *string `json:"designation,omitempty"`
	Role                     string  `json:"role"`
	IsApproved               bool    `json:"is_approved"`
	ApprovedAt               *string `json:"approved_at,omitempty"`
	ImageURL                 *string `json:"image_url,omitempty"`
	EmployeeID               *string `json:"employee_id,omitempty"`
	DateOfJoining            *string `json:"date_of_joining,omitempty"`
	DateOfBirth              *string `json:"date_of_birth,omitempty"`
	BloodGroup               *string `json:"blood_group,omitempty"`
	Posting                  *string `json:"posting,omitempty"`
	LastPlaceOfPosting       *string `json:"last_place_of_posting,omitempty"`
	LastPostingConfirmedAt   *string `json:"last_posting_confirmed_at,omitempty"`
	EmergencyContactName     *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone    *string `json:"emergency_contact_phone,omitempty"`
	EmergencyContactRelation *string `json:"emergency_contact_relation,omitempty"`
	InsuranceNomineeName     *string `json:"insurance_nominee_name,omitempty"`
	InsuranceNomineePhone    *string `json:"insurance_nominee_phone,omitempty"`
	InsuranceNomineeRelation *string `json:"insurance_nominee_relation,omitempty"`
	IsProfileComplete        bool    `json:"is_profile_complete"`
	LastLogin                *string `json:"last_login,omitempty"`
	Active                   bool    `json:"active"`
	gDto.Metadata
}

// FromModel maps an account row to its API shape. The password hash never
// leaves the service layer.
func (m *MemberResponse) FromModel(user model.User) {
	m.ID = user.ID
	m.Email = user.Email
	m.Name = user.Name
	m.Phone = user.Phone
	m.Designation = user.Designation
	m.Role = user.Role
	m.IsApproved = user.IsApproved
	m.ApprovedAt = formatTime(user.ApprovedAt, constant.DateFormat)
	m.ImageURL = user.ImageURL
	m.EmployeeID = user.EmployeeID
	m.DateOfJoining = formatTime(user.DateOfJoining, constant.DateOnlyFormat)
	m.DateOfBirth = formatTime(user.DateOfBirth, constant.DateOnlyFormat)
	m.BloodGroup = user.BloodGroup
	m.Posting = user.Posting
	m.LastPlaceOfPosting = user.LastPlaceOfPosting
	m.LastPostingConfirmedAt = formatTime(user.LastPostingConfirmedAt, constant.DateFormat)
	m.EmergencyContactName = user.EmergencyContactName
	m.EmergencyContactPhone = user.EmergencyContactPhone
	m.EmergencyContactRelation = user.EmergencyContactRelation
	m.InsuranceNomineeName = user.InsuranceNomineeName
	m.InsuranceNomineePhone = user.InsuranceNomineePhone
	m.InsuranceNomineeRelation = user.InsuranceNomineeRelation
	m.IsProfileComplete = user.IsProfileComplete
	m.LastLogin = formatTime(user.LastLogin, constant.DateFormat)
	m.Active = user.Active
	m.Metadata.FromModel(user.Metadata)
}

type GetMembersResponse struct {
	Members       []MemberResponse `json:"members"`
	TotalData     int              `json:"total_data"`
	TotalPage     int              `json:"total_page"`
	TotalApproved int              `json:"total_approved"`
	TotalPending  int              `json:"total_pending"`
}

func (g *GetMembersResponse) FromModels(models []model.User, totalData, limit int) {
	g.TotalData = totalData
	g.TotalPage = shared.CalculateTotalPage(totalData, limit)

	g.Members = make([]MemberResponse, len(models))
	for i, mod := range models {
		g.Members[i].FromModel(mod)
	}
}

type ProfileStatusResponse struct {
	Status                 model.GateStatus `json:"status"`
	MissingFields          []string         `json:"missing_fields"`
	LastPostingConfirmedAt *string          `json:"last_posting_confirmed_at,omitempty"`
}

func (p *ProfileStatusResponse) FromModel(user model.User, now time.Time) {
	p.Status = user.GateStatus(now)
	p.MissingFields = user.MissingProfileFields()
	p.LastPostingConfirmedAt = formatTime(user.LastPostingConfirmedAt, constant.DateFormat)
}

type CompleteProfileRequest struct {
	DateOfJoining            string `json:"date_of_joining"            validate:"required,datetime=2006-01-02"`
	BloodGroup               string `json:"blood_group"                validate:"required,max=10"`
	DateOfBirth              string `json:"date_of_birth"              validate:"required,datetime=2006-01-02"`
	EmployeeID               string `json:"employee_id"                validate:"required,max=50"`
	EmergencyContactName     string `json:"emergency_contact_name"     validate:"required,max=100"`
	EmergencyContactPhone    string `json:"emergency_contact_phone"    validate:"required,max=20"`
	EmergencyContactRelation string `json:"emergency_contact_relation" validate:"required,max=50"`
	InsuranceNomineeName     string `json:"insurance_nominee_name"     validate:"required,max=100"`
	InsuranceNomineePhone    string `json:"insurance_nominee_phone"    validate:"required,max=20"`
	InsuranceNomineeRelation string `json:"insurance_nominee_relation" validate:"required,max=50"`
	LastPlaceOfPosting       string `json:"last_place_of_posting"      validate:"required,max=100"`
}

// ProfileFields carries parsed profile values so TransformFields can build
// the update map from db tags.
type ProfileFields struct {
	DateOfJoining            time.Time `db:"date_of_joining"`
	BloodGroup               string    `db:"blood_group"`
	DateOfBirth              time.Time `db:"date_of_birth"`
	EmployeeID               string    `db:"employee_id"`
	EmergencyContactName     string    `db:"emergency_contact_name"`
	EmergencyContactPhone    string    `db:"emergency_contact_phone"`
	EmergencyContactRelation string    `db:"emergency_contact_relation"`
	InsuranceNomineeName     string    `db:"insurance_nominee_name"`
	InsuranceNomineePhone    string    `db:"insurance_nominee_phone"`
	InsuranceNomineeRelation string    `db:"insurance_nominee_relation"`
	Posting                  string    `db:"posting"`
	LastPlaceOfPosting       string    `db:"last_place_of_posting"`
	LastPostingConfirmedAt   time.Time `db:"last_posting_confirmed_at"`
	IsProfileComplete        bool      `db:"is_profile_complete"`
}

// ToFields parses the date strings and seeds the current posting from the
// last place of posting, which also counts as this month's confirmation.
func (c *CompleteProfileRequest) ToFields(now time.Time) (ProfileFields, error) {
	dateOfJoining, err := timezone.Parse(constant.DateOnlyFormat, c.DateOfJoining)
	if err != nil {
		return ProfileFields{}, err
	}

	dateOfBirth, err := timezone.Parse(constant.DateOnlyFormat, c.DateOfBirth)
	if err != nil {
		return ProfileFields{}, err
	}

	return ProfileFields{
		DateOfJoining:            dateOfJoining,
		BloodGroup:               c.BloodGroup,
		DateOfBirth:              dateOfBirth,
		EmployeeID:               c.EmployeeID,
		EmergencyContactName:     c.EmergencyContactName,
		EmergencyContactPhone:    c.EmergencyContactPhone,
		EmergencyContactRelation: c.EmergencyContactRelation,
		InsuranceNomineeName:     c.InsuranceNomineeName,
		InsuranceNomineePhone:    c.InsuranceNomineePhone,
		InsuranceNomineeRelation: c.InsuranceNomineeRelation,
		Posting:                  c.LastPlaceOfPosting,
		LastPlaceOfPosting:       c.LastPlaceOfPosting,
		LastPostingConfirmedAt:   now,
		IsProfileComplete:        true,
	}, nil
}

type ConfirmPostingRequest struct {
	Posting string `json:"posting" validate:"required,max=100"`
}

type UpdateProfileRequest struct {
	Name                     string                `db:"name"                       json:"name"                       validate:"omitempty,max=100"`
	Phone                    string                `db:"phone"                      json:"phone"                      validate:"omitempty,max=20"`
	Designation              string                `db:"designation"                json:"designation"                validate:"omitempty,max=100"`
	BloodGroup               string                `db:"blood_group"                json:"blood_group"                validate:"omitempty,max=10"`
	EmployeeID               string                `db:"employee_id"                json:"employee_id"                validate:"omitempty,max=50"`
	EmergencyContactName     string                `db:"emergency_contact_name"     json:"emergency_contact_name"     validate:"omitempty,max=100"`
	EmergencyContactPhone    string                `db:"emergency_contact_phone"    json:"emergency_contact_phone"    validate:"omitempty,max=20"`
	EmergencyContactRelation string                `db:"emergency_contact_relation" json:"emergency_contact_relation" validate:"omitempty,max=50"`
	InsuranceNomineeName     string                `db:"insurance_nominee_name"     json:"insurance_nominee_name"     validate:"omitempty,max=100"`
	InsuranceNomineePhone    string                `db:"insurance_nominee_phone"    json:"insurance_nominee_phone"    validate:"omitempty,max=20"`
	InsuranceNomineeRelation string                `db:"insurance_nominee_relation" json:"insurance_nominee_relation" validate:"omitempty,max=50"`
	DateOfBirth              string                `json:"date_of_birth"            validate:"omitempty,datetime=2006-01-02"`
	DateOfJoining            string                `json:"date_of_joining"          validate:"omitempty,datetime=2006-01-02"`
	Image                    *multipart.FileHeader `json:"image"                    validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile                multipart.File        `json:"-"`
}

// MemberApprovedEvent is published to the notification topic when an admin
// approves a pending account.
type MemberApprovedEvent struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	ApprovedAt string `json:"approved_at"`
}

func formatTime(t *time.Time, layout string) *string {
	if t == nil {
		return nil
	}

	formatted := timezone.Format(*t, layout)

	return &formatted
}
