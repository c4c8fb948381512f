package auth_test

import (
	"testing"

	"github.com/capstonehub/capstone-hub/internal/domain/auth"
	"github.com/stretchr/testify/require"
)

func TestCredentialStore_Verify(t *testing.T) {
	adminHash, err := auth.HashPassword("admin-pass")
	require.NoError(t, err)

	store, err := auth.NewCredentialStore(
		auth.Secret{Hash: adminHash},
		auth.Secret{Plain: "viewer-pass"},
	)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		role     auth.Role
		ok       bool
	}{
		{"admin", "admin-pass", auth.RoleAdmin, true},
		{"viewer", "viewer-pass", auth.RoleViewer, true},
		{"wrong", "nope", auth.RoleNone, false},
		{"empty", "", auth.RoleNone, false},
		{"prefix", "admin-pas", auth.RoleNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := store.Verify(tt.password)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.role, role)
		})
	}
}

func TestCredentialStore_AdminCheckedFirst(t *testing.T) {
	store, err := auth.NewCredentialStore(auth.Secret{Plain: "same"}, auth.Secret{Plain: "same"})
	require.NoError(t, err)

	role, ok := store.Verify("same")
	require.True(t, ok)
	require.Equal(t, auth.RoleAdmin, role)
}

func TestCredentialStore_ViewerOptional(t *testing.T) {
	store, err := auth.NewCredentialStore(auth.Secret{Plain: "admin"}, auth.Secret{})
	require.NoError(t, err)
	require.False(t, store.ViewerEnabled())

	_, ok := store.Verify("")
	require.False(t, ok)
	_, ok = store.Verify("viewer")
	require.False(t, ok)
}

func TestNewCredentialStore_Invalid(t *testing.T) {
	_, err := auth.NewCredentialStore(auth.Secret{}, auth.Secret{Plain: "viewer"})
	require.Error(t, err)

	_, err = auth.NewCredentialStore(auth.Secret{Hash: "not-bcrypt"}, auth.Secret{})
	require.Error(t, err)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := auth.HashPassword("")
	require.Error(t, err)
}
