package rotation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation"
)

func TestAssignRolesSwapInversion(t *testing.T) {
	normal := rotation.AssignRoles(false)
	swapped := rotation.AssignRoles(true)

	assert.Equal(t, domain.RoleIndices{Primary: 0, Secondary: 1, Tertiary: 2}, normal)
	assert.Equal(t, normal.Primary, swapped.Secondary)
	assert.Equal(t, normal.Secondary, swapped.Primary)
	assert.Equal(t, normal.Tertiary, swapped.Tertiary)
}

func TestAssignMembers(t *testing.T) {
	members := []string{"kim", "lee", "park", "choi"}

	assert.Equal(t, domain.RoleAssignment{
		Primary:   "kim",
		Secondary: "lee",
		Tertiary:  []string{"park", "choi"},
	}, rotation.AssignMembers(members, false))

	assert.Equal(t, domain.RoleAssignment{
		Primary:   "lee",
		Secondary: "kim",
		Tertiary:  []string{"park", "choi"},
	}, rotation.AssignMembers(members, true))
}

func TestAssignMembersShortRoster(t *testing.T) {
	assert.Equal(t, domain.RoleAssignment{
		Primary:   "",
		Secondary: "kim",
		Tertiary:  []string{},
	}, rotation.AssignMembers([]string{"kim"}, true))

	assert.Equal(t, domain.RoleAssignment{Tertiary: []string{}}, rotation.AssignMembers(nil, false))
}
