package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateUserRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateUserRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  CreateUserRequest{DisplayName: "Jordan", Email: "jordan@example.com", Password: "password123"},
		},
		{
			name:    "missing display name",
			req:     CreateUserRequest{Email: "jordan@example.com", Password: "password123"},
			wantErr: true,
		},
		{
			name:    "bad email",
			req:     CreateUserRequest{DisplayName: "Jordan", Email: "not-an-email", Password: "password123"},
			wantErr: true,
		},
		{
			name:    "short password",
			req:     CreateUserRequest{DisplayName: "Jordan", Email: "jordan@example.com", Password: "short"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	valid := LoginRequest{Email: "jordan@example.com", Password: "anything"}
	assert.NoError(t, valid.Validate())

	missing := LoginRequest{Email: "jordan@example.com"}
	assert.Error(t, missing.Validate())
}

func TestUpdatePasswordRequest_Validate(t *testing.T) {
	valid := UpdatePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"}
	assert.NoError(t, valid.Validate())

	short := UpdatePasswordRequest{CurrentPassword: "old-password", NewPassword: "short"}
	assert.Error(t, short.Validate())
}
