// Package session 在 redis 中保存当前在岗的值班会话以及等待接班的会话。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

const (
	activeKey  = "duty_session:active"
	pendingKey = "duty_session:pending"
)

var ErrNoPendingHandover = errors.New("没有等待接班的会话")

// promoteScript 把等待接班的会话原子地变为在岗会话
var promoteScript = redis.NewScript(`
local pending = redis.call("GET", KEYS[2])
if not pending then
	return false
end
redis.call("SET", KEYS[1], pending)
redis.call("DEL", KEYS[2])
return pending
`)

// clearScript 在脚本内比较 userID，避免读取后会话已被交接替换
var clearScript = redis.NewScript(`
local deleted = 0
for _, key in ipairs(KEYS) do
	local data = redis.call("GET", key)
	if data then
		local sess = cjson.decode(data)
		if tostring(sess.userID) == ARGV[1] then
			deleted = deleted + redis.call("DEL", key)
		end
	end
end
return deleted
`)

type Store struct {
	client  *redis.Client
	timeout time.Duration
}

func NewStore(client *redis.Client, timeout time.Duration) *Store {
	return &Store{
		client:  client,
		timeout: timeout,
	}
}

func (s *Store) get(ctx context.Context, key string) (*domain.DutySession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sess := &domain.DutySession{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) set(ctx context.Context, key string, sess *domain.DutySession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.client.Set(ctx, key, data, 0).Err()
}

// Active 返回当前在岗的会话，没有人在岗时返回 nil
func (s *Store) Active(ctx context.Context) (*domain.DutySession, error) {
	return s.get(ctx, activeKey)
}

func (s *Store) SetActive(ctx context.Context, sess *domain.DutySession) error {
	return s.set(ctx, activeKey, sess)
}

func (s *Store) Pending(ctx context.Context) (*domain.DutySession, error) {
	return s.get(ctx, pendingKey)
}

func (s *Store) SetPending(ctx context.Context, sess *domain.DutySession) error {
	return s.set(ctx, pendingKey, sess)
}

// CompleteHandover 结束交接，返回新的在岗会话
func (s *Store) CompleteHandover(ctx context.Context) (*domain.DutySession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := promoteScript.Run(ctx, s.client, []string{activeKey, pendingKey}).Text()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoPendingHandover
	}
	if err != nil {
		return nil, err
	}

	sess := &domain.DutySession{}
	if err := json.Unmarshal([]byte(data), sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Clear 删除某个用户的会话，在岗与待接班的会话都会检查
func (s *Store) Clear(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return clearScript.Run(ctx, s.client, []string{activeKey, pendingKey}, userID).Err()
}
