package domain

import "time"

// DutySession 表示当前登录在岗的组
type DutySession struct {
	TeamID    int64     `json:"teamID"`
	TeamName  string    `json:"teamName"`
	UserID    int64     `json:"userID"`
	Username  string    `json:"username"`
	StartedAt time.Time `json:"startedAt"`
}
