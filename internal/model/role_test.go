package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"student", "teacher", "admin"} {
		role, err := ParseRole(s)
		assert.NoError(t, err)
		assert.Equal(t, Role(s), role)
	}
	for _, s := range []string{"", "Student", "owner", "superuser"} {
		_, err := ParseRole(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, RoleAdmin.Staff())
	assert.False(t, RoleTeacher.Staff())
	assert.False(t, RoleStudent.Staff())

	assert.True(t, RoleStudent.Registrable())
	assert.True(t, RoleTeacher.Registrable())
	assert.False(t, RoleAdmin.Registrable())
}
