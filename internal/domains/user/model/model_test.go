package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"portal/internal/domains/user/model"
)

func stringPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func completeUser() model.User {
	joined := time.Date(2015, time.June, 1, 0, 0, 0, 0, time.UTC)
	born := time.Date(1988, time.March, 12, 0, 0, 0, 0, time.UTC)

	return model.User{
		ID:                       "user-id-123",
		Email:                    "member@example.com",
		Name:                     "Test Member",
		DateOfJoining:            timePtr(joined),
		DateOfBirth:              timePtr(born),
		BloodGroup:               stringPtr("O+"),
		EmployeeID:               stringPtr("EMP-1024"),
		EmergencyContactName:     stringPtr("Next Of Kin"),
		EmergencyContactPhone:    stringPtr("+8801700000000"),
		EmergencyContactRelation: stringPtr("spouse"),
		InsuranceNomineeName:     stringPtr("Next Of Kin"),
		InsuranceNomineePhone:    stringPtr("+8801700000000"),
		InsuranceNomineeRelation: stringPtr("spouse"),
		Posting:                  stringPtr("Head Office"),
		IsProfileComplete:        true,
	}
}

func TestUser_MissingProfileFields(t *testing.T) {
	t.Run("complete profile has no missing fields", func(t *testing.T) {
		user := completeUser()

		assert.Empty(t, user.MissingProfileFields())
	})

	t.Run("empty strings count as missing", func(t *testing.T) {
		user := completeUser()
		user.BloodGroup = stringPtr("")
		user.Posting = nil

		missing := user.MissingProfileFields()

		assert.Contains(t, missing, model.FieldBloodGroup)
		assert.Contains(t, missing, model.FieldPosting)
		assert.Len(t, missing, 2)
	})
}

func TestUser_GateStatus(t *testing.T) {
	now := time.Date(2026, time.February, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		setup func(u *model.User)
		want  model.GateStatus
	}{
		{
			name: "incomplete profile needs completion",
			setup: func(u *model.User) {
				u.BloodGroup = nil
				u.IsProfileComplete = false
			},
			want: model.GateNeedsCompletion,
		},
		{
			name: "completion wins over a stale confirmation",
			setup: func(u *model.User) {
				u.EmployeeID = nil
				u.IsProfileComplete = false
				u.LastPostingConfirmedAt = timePtr(now.AddDate(0, -2, 0))
			},
			want: model.GateNeedsCompletion,
		},
		{
			name: "flag cleared without data still needs completion",
			setup: func(u *model.User) {
				u.IsProfileComplete = false
			},
			want: model.GateNeedsCompletion,
		},
		{
			name: "complete profile without any confirmation needs one",
			setup: func(u *model.User) {
				u.LastPostingConfirmedAt = nil
			},
			want: model.GateNeedsMonthlyConfirmation,
		},
		{
			name: "confirmation from last month has gone stale",
			setup: func(u *model.User) {
				u.LastPostingConfirmedAt = timePtr(time.Date(2026, time.January, 31, 23, 59, 0, 0, time.UTC))
			},
			want: model.GateNeedsMonthlyConfirmation,
		},
		{
			name: "confirmation this month is current",
			setup: func(u *model.User) {
				u.LastPostingConfirmedAt = timePtr(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
			},
			want: model.GateCurrent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := completeUser()
			tt.setup(&user)

			assert.Equal(t, tt.want, user.GateStatus(now))
		})
	}
}

func TestUser_PostingConfirmedThisMonth(t *testing.T) {
	now := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		confirmedAt *time.Time
		want        bool
	}{
		{
			name:        "never confirmed",
			confirmedAt: nil,
			want:        false,
		},
		{
			name:        "confirmed the day before, in the previous month",
			confirmedAt: timePtr(time.Date(2026, time.January, 31, 23, 0, 0, 0, time.UTC)),
			want:        false,
		},
		{
			name:        "confirmed the same month a year earlier",
			confirmedAt: timePtr(time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)),
			want:        false,
		},
		{
			name:        "confirmed earlier the same day",
			confirmedAt: timePtr(now),
			want:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := completeUser()
			user.LastPostingConfirmedAt = tt.confirmedAt

			assert.Equal(t, tt.want, user.PostingConfirmedThisMonth(now))
		})
	}
}
