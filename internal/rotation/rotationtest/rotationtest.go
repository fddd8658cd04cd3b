// Package rotationtest 提供测试用的内存配置源与示例配置。
package rotationtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

var Teams = []string{"1조", "2조", "3조", "4조"}

// TenDayConfig 返回周期为 10 天、锚点为 2025-11-06 的配置。
// 第 i 天白班为 Teams[i%4]，夜班为 Teams[(i+3)%4]；奇数天白班交换，偶数天夜班交换。
func TenDayConfig() *domain.ShiftPatternConfig {
	pattern := make([]domain.DailyShiftPattern, 10)
	for i := range pattern {
		pattern[i] = domain.DailyShiftPattern{
			Offset: i,
			Day:    domain.ShiftAssignment{Team: Teams[i%4], IsSwap: i%2 == 1},
			Night:  domain.ShiftAssignment{Team: Teams[(i+3)%4], IsSwap: i%2 == 0},
		}
	}

	return &domain.ShiftPatternConfig{
		ID:          1,
		ValidFrom:   shiftclock.Date(2025, time.November, 6),
		CycleLength: 10,
		Pattern:     pattern,
		Roster: map[string][]string{
			"1조": {"kim", "lee", "park", "choi"},
			"2조": {"jung", "kang", "cho"},
			"3조": {"yoon", "jang"},
			"4조": {"lim", "han", "oh"},
		},
		RoleLabels: []string{"감독", "부감독", "영상"},
	}
}

// MemorySource 是 rotation.ConfigSource 的内存实现
type MemorySource struct {
	mu      sync.Mutex
	configs []*domain.ShiftPatternConfig
	Calls   int
}

func NewMemorySource(configs ...*domain.ShiftPatternConfig) *MemorySource {
	return &MemorySource{configs: configs}
}

func (s *MemorySource) Add(cfg *domain.ShiftPatternConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs = append(s.configs, cfg)
}

func (s *MemorySource) GetActiveShiftPatternConfig(_ context.Context, date time.Time) (*domain.ShiftPatternConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	return rotation.ActiveConfig(s.configs, date)
}

func (s *MemorySource) GetShiftPatternConfigsBetween(_ context.Context, from, to time.Time) ([]*domain.ShiftPatternConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++

	if to.Before(from) {
		return nil, fmt.Errorf("invalid range")
	}

	out := make([]*domain.ShiftPatternConfig, 0)
	for _, cfg := range s.configs {
		if cfg.ValidFrom.After(to) {
			continue
		}
		if cfg.ValidTo != nil && cfg.ValidTo.Before(from) {
			continue
		}
		out = append(out, cfg)
	}
	return out, nil
}
