package model

import (
	"time"

	"portal/shared/model"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID                       = "id"
	FieldEmail                    = "email"
	FieldPassword                 = "password"
	FieldName                     = "name"
	FieldPhone                    = "phone"
	FieldDesignation              = "designation"
	FieldRole                     = "role"
	FieldIsApproved               = "is_approved"
	FieldApprovedAt               = "approved_at"
	FieldImageURL                 = "image_url"
	FieldEmployeeID               = "employee_id"
	FieldDateOfJoining            = "date_of_joining"
	FieldDateOfBirth              = "date_of_birth"
	FieldBloodGroup               = "blood_group"
	FieldPosting                  = "posting"
	FieldLastPlaceOfPosting       = "last_place_of_posting"
	FieldLastPostingConfirmedAt   = "last_posting_confirmed_at"
	FieldEmergencyContactName     = "emergency_contact_name"
	FieldEmergencyContactPhone    = "emergency_contact_phone"
	FieldEmergencyContactRelation = "emergency_contact_relation"
	FieldInsuranceNomineeName     = "insurance_nominee_name"
	FieldInsuranceNomineePhone    = "insurance_nominee_phone"
	FieldInsuranceNomineeRelation = "insurance_nominee_relation"
	FieldIsProfileComplete        = "is_profile_complete"
	FieldLastLogin                = "last_login"
	FieldActive                   = "active"
)

// GateStatus is the single profile-completeness state checked before a
// member may submit bookings or questions.
type GateStatus string

const (
	GateNeedsCompletion          GateStatus = "NEEDS_COMPLETION"
	GateNeedsMonthlyConfirmation GateStatus = "NEEDS_MONTHLY_CONFIRMATION"
	GateCurrent                  GateStatus = "CURRENT"
)

type User struct {
	ID                       string     `db:"id"`
	Email                    string     `db:"email"`
	Password                 string     `db:"password"`
	Name                     string     `db:"name"`
	Phone                    *string    `db:"phone"`
	Designation              *string    `db:"designation"`
	Role                     string     `db:"role"`
	IsApproved               bool       `db:"is_approved"`
	ApprovedAt               *time.Time `db:"approved_at"`
	ImageURL                 *string    `db:"image_url"`
	EmployeeID               *string    `db:"employee_id"`
	DateOfJoining            *time.Time `db:"date_of_joining"`
	DateOfBirth              *time.Time `db:"date_of_birth"`
	BloodGroup               *string    `db:"blood_group"`
	Posting                  *string    `db:"posting"`
	LastPlaceOfPosting       *string    `db:"last_place_of_posting"`
	LastPostingConfirmedAt   *time.Time `db:"last_posting_confirmed_at"`
	EmergencyContactName     *string    `db:"emergency_contact_name"`
	EmergencyContactPhone    *string    `db:"emergency_contact_phone"`
	EmergencyContactRelation *string    `db:"emergency_contact_relation"`
	InsuranceNomineeName     *string    `db:"insurance_nominee_name"`
	InsuranceNomineePhone    *string    `db:"insurance_nominee_phone"`
	InsuranceNomineeRelation *string    `db:"insurance_nominee_relation"`
	IsProfileComplete        bool       `db:"is_profile_complete"`
	LastLogin                *time.Time `db:"last_login"`
	Active                   bool       `db:"active"`
	model.Metadata
}

// MissingProfileFields lists the required profile fields that are still empty.
func (u *User) MissingProfileFields() []string {
	missing := []string{}

	checks := []struct {
		field string
		set   bool
	}{
		{FieldDateOfJoining, u.DateOfJoining != nil},
		{FieldBloodGroup, isSet(u.BloodGroup)},
		{FieldDateOfBirth, u.DateOfBirth != nil},
		{FieldEmployeeID, isSet(u.EmployeeID)},
		{FieldEmergencyContactName, isSet(u.EmergencyContactName)},
		{FieldEmergencyContactPhone, isSet(u.EmergencyContactPhone)},
		{FieldEmergencyContactRelation, isSet(u.EmergencyContactRelation)},
		{FieldInsuranceNomineeName, isSet(u.InsuranceNomineeName)},
		{FieldInsuranceNomineePhone, isSet(u.InsuranceNomineePhone)},
		{FieldInsuranceNomineeRelation, isSet(u.InsuranceNomineeRelation)},
		{FieldPosting, isSet(u.Posting)},
	}

	for _, check := range checks {
		if !check.set {
			missing = append(missing, check.field)
		}
	}

	return missing
}

// GateStatus derives the profile gate state from the account row.
// Completion always wins over confirmation: an incomplete profile must be
// filled in before the monthly posting confirmation is asked for.
func (u *User) GateStatus(now time.Time) GateStatus {
	if !u.IsProfileComplete || len(u.MissingProfileFields()) > 0 {
		return GateNeedsCompletion
	}

	if !u.PostingConfirmedThisMonth(now) {
		return GateNeedsMonthlyConfirmation
	}

	return GateCurrent
}

// PostingConfirmedThisMonth compares calendar year and month, not a rolling
// 30-day window. A confirmation on Jan 31 goes stale on Feb 1.
func (u *User) PostingConfirmedThisMonth(now time.Time) bool {
	if u.LastPostingConfirmedAt == nil {
		return false
	}

	confirmed := *u.LastPostingConfirmedAt

	return confirmed.Year() == now.Year() && confirmed.Month() == now.Month()
}

func isSet(value *string) bool {
	return value != nil && *value != ""
}
