package permissions_test

import (
	"net/http"
	"testing"

	"portal/permissions"
)

func TestGetLoadsEmbeddedTable(t *testing.T) {
	data := permissions.Get()
	if data == nil {
		t.Fatal("expected embedded permission table to load")
	}

	if data.Skip {
		t.Error("expected the global skip flag to be off")
	}

	if len(data.Endpoints) == 0 {
		t.Fatal("expected at least one endpoint entry")
	}
}

func TestFindPermissions(t *testing.T) {
	data := permissions.Get()
	if data == nil {
		t.Fatal("expected embedded permission table to load")
	}

	tests := []struct {
		name      string
		path      string
		method    string
		wantSkip  bool
		wantRoles []string
	}{
		{
			name:     "public auth route skips authentication",
			path:     "/v1/auth/login",
			method:   http.MethodPost,
			wantSkip: true,
		},
		{
			name:      "admin-only member listing",
			path:      "/v1/members/",
			method:    http.MethodGet,
			wantRoles: []string{"admin"},
		},
		{
			name:      "admin-only booking approval",
			path:      "/v1/bookings/{id}/approve",
			method:    http.MethodPatch,
			wantRoles: []string{"admin"},
		},
		{
			// An unlisted route yields the zero Permission: no role list,
			// which the RBAC middleware treats as open to any authenticated
			// member.
			name:   "unlisted member route has no role restriction",
			path:   "/v1/bookings/",
			method: http.MethodPost,
		},
		{
			name:   "unknown route has no role restriction",
			path:   "/v1/does-not-exist",
			method: http.MethodGet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission := data.FindPermissions(tt.path, tt.method)

			if permission.Skip != tt.wantSkip {
				t.Errorf("expected skip %v, got %v", tt.wantSkip, permission.Skip)
			}

			if len(permission.Permissions) != len(tt.wantRoles) {
				t.Fatalf("expected %d roles, got %d", len(tt.wantRoles), len(permission.Permissions))
			}

			for i, role := range tt.wantRoles {
				if permission.Permissions[i] != role {
					t.Errorf("expected role %s, got %s", role, permission.Permissions[i])
				}
			}
		})
	}
}
