package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		want   Role
	}{
		{"no groups", nil, RoleReader},
		{"reader", []string{"reader"}, RoleReader},
		{"writer", []string{"writer"}, RoleWriter},
		{"admin", []string{"admin"}, RoleAdmin},
		{"admin and writer", []string{"admin", "writer"}, RoleAdmin},
		{"writer and admin", []string{"writer", "admin"}, RoleAdmin},
		{"writer and reader", []string{"reader", "writer"}, RoleWriter},
		{"all three", []string{"reader", "writer", "admin"}, RoleAdmin},
		{"unknown only", []string{"editors"}, RoleReader},
		{"mixed case", []string{"Writer"}, RoleWriter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.groups))
		})
	}
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" ADMIN ")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, r)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)

	_, ok = ParseRole("")
	assert.False(t, ok)
}
