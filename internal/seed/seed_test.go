package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoster(t *testing.T) {
	input := `组名,用户名,姓名
1조, kim, 김민수
2조, jung, 정다은
1조, lee, 이서준
`
	teams, members, err := ParseRoster(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"1조", "2조"}, teams)
	require.Len(t, members, 3)
	assert.Equal(t, Member{Team: "1조", Username: "lee", FullName: "이서준"}, members[2])
}

func TestParseRosterErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"空文件", ""},
		{"只有一个组", "组名,用户名,姓名\n1조,kim,김민수\n"},
		{"缺少用户名", "组名,用户名,姓名\n1조,,김민수\n2조,jung,정다은\n"},
		{"列数不对", "组名,用户名,姓名\n1조,kim\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseRoster(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
