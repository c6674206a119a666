package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    ID
		wantErr bool
	}{
		{"string", `"abc-1"`, "abc-1", false},
		{"number", `42`, "42", false},
		{"null", `null`, "", false},
		{"bool", `true`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID

			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidID)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"Admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{" admin ", RoleAdmin},
		{"ROLE_ADMIN", RoleAdmin},
		{"Administrator", RoleAdmin},
		{"User", RoleUser},
		{"manager", RoleUser},
		{"", RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.in))
		})
	}
}

func TestRole_UnmarshalJSON(t *testing.T) {
	var u User

	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"email":"a@b.co","role":{"name":"ADMIN"}}`), &u))
	assert.Equal(t, ID("7"), u.ID)
	assert.True(t, u.IsAdmin())

	require.NoError(t, json.Unmarshal([]byte(`{"id":"8","email":"c@d.co","role":"user"}`), &u))
	assert.Equal(t, RoleUser, u.Role)

	var r Role
	assert.ErrorIs(t, r.UnmarshalJSON([]byte(`12`)), ErrInvalidRole)
}

func TestUser_ApplyEmailHeuristic(t *testing.T) {
	u := &User{ID: "1", Email: "Admin@propdesk.io", Role: RoleUser}
	u.ApplyEmailHeuristic()
	assert.Equal(t, RoleAdmin, u.Role)

	u = &User{ID: "2", Email: "jane@propdesk.io", Role: RoleUser}
	u.ApplyEmailHeuristic()
	assert.Equal(t, RoleUser, u.Role)

	var nilUser *User
	nilUser.ApplyEmailHeuristic()
	assert.False(t, nilUser.IsAdmin())
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Jane Doe", (&User{FirstName: "Jane", LastName: "Doe"}).FullName())
	assert.Equal(t, "jane@propdesk.io", (&User{Email: "jane@propdesk.io"}).FullName())
}

func TestScreenStatus_UnmarshalJSON(t *testing.T) {
	var s Screen

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Vendors","route":"/vendors","status":"active"}`), &s))
	assert.True(t, s.IsActive())

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Vendors","route":"/vendors","status":"Inactive"}`), &s))
	assert.False(t, s.IsActive())
}

func TestCredential_NeedsRefresh(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var empty *Credential
	assert.True(t, empty.Empty())
	assert.False(t, empty.NeedsRefresh(now, time.Minute))

	noExpiry := &Credential{AccessToken: "a"}
	assert.False(t, noExpiry.NeedsRefresh(now, time.Minute))

	fresh := &Credential{AccessToken: "a", ExpiresAt: now.Add(time.Hour)}
	assert.False(t, fresh.NeedsRefresh(now, time.Minute))

	nearExpiry := &Credential{AccessToken: "a", ExpiresAt: now.Add(30 * time.Second)}
	assert.True(t, nearExpiry.NeedsRefresh(now, time.Minute))

	expired := &Credential{AccessToken: "a", ExpiresAt: now.Add(-time.Second)}
	assert.True(t, expired.NeedsRefresh(now, 0))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&User{ID: "1", Email: "a@b.co"}))
	assert.ErrorIs(t, Validate(&User{Email: "a@b.co"}), ErrInvalidPayload)
	assert.ErrorIs(t, Validate(&User{ID: "1", Email: "not-an-email"}), ErrInvalidPayload)
	assert.ErrorIs(t, Validate(&Screen{ID: "1", Name: "x", Route: "/x", Status: "GONE"}), ErrInvalidPayload)
}

func TestValidateAll(t *testing.T) {
	in := []Permission{
		{ID: "1", UserID: "u", ScreenID: "s"},
		{ID: "2", UserID: "", ScreenID: "s"},
		{ID: "3", UserID: "u", ScreenID: "t"},
	}

	out, err := ValidateAll(in)
	require.ErrorIs(t, err, ErrInvalidPayload)
	assert.Len(t, out, 2)
	assert.Equal(t, ID("3"), out[1].ID)
}
