package validator_test

import (
	"strings"
	"testing"

	"portal/shared/validator"
)

type memberForm struct {
	Name  string `validate:"required"                    json:"name"`
	Email string `validate:"required,email"              json:"email"`
	Age   int    `validate:"gte=18,lte=70"               json:"age"`
	Role  string `validate:"oneof=member admin guest"    json:"role"`
}

func validForm() *memberForm {
	return &memberForm{
		Name:  "Test Member",
		Email: "member@example.com",
		Age:   35,
		Role:  "member",
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(f *memberForm)
		expectError bool
	}{
		{
			name:   "valid struct",
			mutate: func(f *memberForm) {},
		},
		{
			name:        "missing required field",
			mutate:      func(f *memberForm) { f.Name = "" },
			expectError: true,
		},
		{
			name:        "invalid email",
			mutate:      func(f *memberForm) { f.Email = "not-an-email" },
			expectError: true,
		},
		{
			name:        "age above range",
			mutate:      func(f *memberForm) { f.Age = 90 },
			expectError: true,
		},
		{
			name:        "age below range",
			mutate:      func(f *memberForm) { f.Age = 15 },
			expectError: true,
		},
		{
			name:        "unknown role",
			mutate:      func(f *memberForm) { f.Role = "owner" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(form)

			err := validator.ValidateStruct(form)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name        string
		field       any
		tag         string
		expectError bool
	}{
		{
			name:  "valid required string",
			field: "EMP-1024",
			tag:   "required",
		},
		{
			name:        "empty required string",
			field:       "",
			tag:         "required",
			expectError: true,
		},
		{
			name:  "valid email",
			field: "member@example.com",
			tag:   "email",
		},
		{
			name:        "invalid email",
			field:       "invalid-email",
			tag:         "email",
			expectError: true,
		},
		{
			name:  "number in range",
			field: 25,
			tag:   "gte=0,lte=100",
		},
		{
			name:        "number out of range",
			field:       150,
			tag:         "gte=0,lte=100",
			expectError: true,
		},
		{
			name:  "valid oneof",
			field: "admin",
			tag:   "oneof=member admin guest",
		},
		{
			name:        "invalid oneof",
			field:       "owner",
			tag:         "oneof=member admin guest",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		jsonBody    string
		expectError bool
	}{
		{
			name:     "valid JSON",
			jsonBody: `{"name":"Test Member","email":"member@example.com","age":35,"role":"member"}`,
		},
		{
			name:        "valid JSON failing validation",
			jsonBody:    `{"name":"Test Member","email":"invalid-email","age":35,"role":"member"}`,
			expectError: true,
		},
		{
			name:        "malformed JSON",
			jsonBody:    `{"name":"Test Member","email":}`,
			expectError: true,
		},
		{
			name:        "empty JSON",
			jsonBody:    `{}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data memberForm

			err := validator.Validate(strings.NewReader(tt.jsonBody), &data)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidationMessages(t *testing.T) {
	err := validator.ValidateStruct(&memberForm{})
	if err == nil {
		t.Fatal("expected validation error for empty struct")
	}

	if !strings.Contains(err.Error(), "required") {
		t.Errorf("expected message naming the required rule, got: %s", err.Error())
	}
}
