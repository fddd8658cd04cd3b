// Package seed 向数据库写入开发和演示用的组、组员与轮换配置。
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation"
	"golang.org/x/crypto/bcrypt"
)

var DefaultTeams = []string{"1조", "2조", "3조", "4조"}

// Member 是名单文件中的一行
type Member struct {
	Team     string
	Username string
	FullName string
}

// ParseRoster 读取 "组名,用户名,姓名" 格式的名单，第一行是表头。
// 返回的组名按首次出现的顺序排列，组内成员保持文件中的顺序。
func ParseRoster(reader io.Reader) ([]string, []Member, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = 3
	r.TrimLeadingSpace = true

	if _, err := r.Read(); err != nil {
		return nil, nil, fmt.Errorf("读取表头失败: %w", err)
	}

	teams := make([]string, 0)
	seen := make(map[string]bool)
	members := make([]Member, 0)
	for {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, err
		}

		m := Member{
			Team:     strings.TrimSpace(row[0]),
			Username: strings.TrimSpace(row[1]),
			FullName: strings.TrimSpace(row[2]),
		}
		if m.Team == "" || m.Username == "" {
			return nil, nil, fmt.Errorf("第 %d 行缺少组名或用户名", len(members)+2)
		}

		if !seen[m.Team] {
			seen[m.Team] = true
			teams = append(teams, m.Team)
		}
		members = append(members, m)
	}

	if len(teams) < 2 {
		return nil, nil, errors.New("名单中至少需要两个组")
	}

	return teams, members, nil
}

func ensureTeam(ctx context.Context, r *repository.Repository, name string) (*domain.Team, error) {
	team, err := r.GetTeamByName(ctx, name)
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, domain.ErrTeamNotFound) {
		return nil, err
	}

	team = &domain.Team{Name: name}
	if err := r.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func publish(ctx context.Context, r *repository.Repository, teams []string, roster map[string][]string, validFrom time.Time, cycleLength int) error {
	cfg := &domain.ShiftPatternConfig{
		ValidFrom:   validFrom,
		CycleLength: cycleLength,
		Pattern:     rotation.GenerateDefaultPattern(cycleLength, teams),
		Roster:      roster,
		Memo:        "seed",
	}
	if err := rotation.Validate(cfg); err != nil {
		return err
	}
	if err := r.CreateShiftPatternConfig(ctx, cfg); err != nil {
		return err
	}

	slog.Info("已发布轮换配置", slog.Int64("id", cfg.ID), slog.Time("validFrom", cfg.ValidFrom))
	return nil
}

// SeedRandom 为每个组生成 membersPerTeam 个随机组员并发布默认轮换
func SeedRandom(ctx context.Context, r *repository.Repository, teams []string, membersPerTeam int, password string, validFrom time.Time) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	gen := newMemberGenerator(time.Now().UnixNano())
	roster := make(map[string][]string, len(teams))
	for i, name := range teams {
		team, err := ensureTeam(ctx, r, name)
		if err != nil {
			return err
		}

		for range membersPerTeam {
			user := gen.member(i, team.ID, string(passwordHash))
			if err := r.CreateUser(ctx, user); err != nil {
				slog.Error("无法插入组员", slog.String("username", user.Username), slog.String("error", err.Error()))
				continue
			}
			roster[name] = append(roster[name], user.FullName)
		}
	}

	return publish(ctx, r, teams, roster, validFrom, len(teams)*2)
}

// SeedRoster 按名单文件创建组和组员，已存在的用户保持不变
func SeedRoster(ctx context.Context, r *repository.Repository, path string, password string, validFrom time.Time) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	teams, members, err := ParseRoster(file)
	if err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	teamIDs := make(map[string]int64, len(teams))
	for _, name := range teams {
		team, err := ensureTeam(ctx, r, name)
		if err != nil {
			return err
		}
		teamIDs[name] = team.ID
	}

	roster := make(map[string][]string, len(teams))
	for _, m := range members {
		roster[m.Team] = append(roster[m.Team], m.FullName)

		_, err := r.GetUserByUsername(ctx, m.Username)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, domain.ErrUserNotFound):
			return err
		}

		teamID := teamIDs[m.Team]
		user := &domain.User{
			Username:     m.Username,
			PasswordHash: string(passwordHash),
			FullName:     m.FullName,
			TeamID:       &teamID,
			Role:         domain.RoleMember,
		}
		if err := r.CreateUser(ctx, user); err != nil {
			slog.Error("无法插入组员", slog.String("username", m.Username), slog.String("error", err.Error()))
		}
	}

	return publish(ctx, r, teams, roster, validFrom, len(teams)*2)
}
