package seed

import (
	"regexp"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

func TestMemberUsername(t *testing.T) {
	gen := newMemberGenerator(1)

	assert.Equal(t, "t1-jmj-01", gen.username(0, "金民俊"))
	// 同名时组内序号递增
	assert.Equal(t, "t1-jmj-02", gen.username(0, "金民俊"))
	assert.Equal(t, "t3-jmj-01", gen.username(2, "金民俊"))
	assert.Equal(t, "t2-pre-01", gen.username(1, "朴瑞恩"))
}

func TestMemberGenerator(t *testing.T) {
	gen := newMemberGenerator(42)
	pattern := regexp.MustCompile(`^t2-[a-z]{2,3}-[0-9]{2,}$`)

	seen := make(map[string]bool)
	for range 200 {
		user := gen.member(1, 7, "hash")

		assert.Regexp(t, pattern, user.Username)
		assert.False(t, seen[user.Username], user.Username)
		seen[user.Username] = true

		n := utf8.RuneCountInString(user.FullName)
		assert.True(t, n == 2 || n == 3, user.FullName)

		assert.Equal(t, domain.RoleMember, user.Role)
		require.NotNil(t, user.TeamID)
		assert.Equal(t, int64(7), *user.TeamID)
		assert.Equal(t, "hash", user.PasswordHash)
	}
}

func TestMemberGeneratorIsDeterministic(t *testing.T) {
	a := newMemberGenerator(7)
	b := newMemberGenerator(7)

	for range 10 {
		assert.Equal(t, a.member(0, 1, ""), b.member(0, 1, ""))
	}
}
