package rotation

import "github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"

// AssignRoles 交换时主副职责对调，第三职责不变
func AssignRoles(isSwap bool) domain.RoleIndices {
	if isSwap {
		return domain.RoleIndices{Primary: 1, Secondary: 0, Tertiary: 2}
	}
	return domain.RoleIndices{Primary: 0, Secondary: 1, Tertiary: 2}
}

// AssignMembers 把有序名单展开为具体职责，下标 2 及之后的成员都归入第三职责
func AssignMembers(members []string, isSwap bool) domain.RoleAssignment {
	idx := AssignRoles(isSwap)
	assignment := domain.RoleAssignment{
		Tertiary: []string{},
	}

	if idx.Primary < len(members) {
		assignment.Primary = members[idx.Primary]
	}
	if idx.Secondary < len(members) {
		assignment.Secondary = members[idx.Secondary]
	}
	if idx.Tertiary < len(members) {
		assignment.Tertiary = append(assignment.Tertiary, members[idx.Tertiary:]...)
	}

	return assignment
}
