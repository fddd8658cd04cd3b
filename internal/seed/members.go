package seed

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

// 常见韩国姓氏和名字用字的汉字写法
var surnames = []string{"金", "李", "朴", "崔", "郑", "姜", "赵", "尹", "张", "林", "韩", "吴", "徐", "申", "权"}

var givenNameCharacters = []string{
	"民", "俊", "瑞", "贤", "宇", "智", "秀", "珍", "英", "浩",
	"成", "恩", "惠", "善", "永", "在", "东", "泰", "允", "河",
	"承", "敏", "娜", "美", "熙", "相", "真", "元", "炫", "妍",
}

// memberGenerator 生成演示用组员。用户名以组的序号开头，同一个生成器内不会重复。
type memberGenerator struct {
	rng  *rand.Rand
	args pinyin.Args
	used map[string]bool
}

func newMemberGenerator(seed int64) *memberGenerator {
	args := pinyin.NewArgs()
	args.Style = pinyin.FirstLetter

	return &memberGenerator{
		rng:  rand.New(rand.NewSource(seed)),
		args: args,
		used: make(map[string]bool),
	}
}

// fullName 返回一个姓加一到两个字的名
func (g *memberGenerator) fullName() string {
	var b strings.Builder
	b.WriteString(surnames[g.rng.Intn(len(surnames))])
	for range g.rng.Intn(2) + 1 {
		b.WriteString(givenNameCharacters[g.rng.Intn(len(givenNameCharacters))])
	}
	return b.String()
}

// username 由组序号、姓名拼音首字母和组内序号组成，例如 t2-jmj-01
func (g *memberGenerator) username(teamIndex int, fullName string) string {
	initials := strings.Join(pinyin.LazyPinyin(fullName, g.args), "")
	if initials == "" {
		initials = "m"
	}

	for seq := 1; ; seq++ {
		candidate := fmt.Sprintf("t%d-%s-%02d", teamIndex+1, initials, seq)
		if !g.used[candidate] {
			g.used[candidate] = true
			return candidate
		}
	}
}

func (g *memberGenerator) member(teamIndex int, teamID int64, passwordHash string) *domain.User {
	fullName := g.fullName()
	return &domain.User{
		Username:     g.username(teamIndex, fullName),
		PasswordHash: passwordHash,
		FullName:     fullName,
		TeamID:       &teamID,
		Role:         domain.RoleMember,
	}
}
