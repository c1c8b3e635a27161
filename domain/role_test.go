package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ParseRole_Known_Tokens(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		external string
		want     Role
	}{
		{"student", RoleStudent},
		{"educator", RoleEducator},
		{"admin", RoleAdmin},
	}

	for _, tt := range tests {
		role, ok := ParseRole(tt.external)
		req.True(ok, tt.external)
		req.Equal(tt.want, role)
		req.Equal(tt.external, role.External())
	}
}

func Test_ParseRole_Rejects_Unknown_Tokens(t *testing.T) {
	req := require.New(t)

	for _, external := range []string{"", "Student", "teacher", "STUDENT", "moderator"} {
		_, ok := ParseRole(external)
		req.False(ok, external)
	}
}
