package domain

import (
	"time"
)

type Role string

const (
	RoleMember Role = "组员"
	RoleAdmin  Role = "管理员"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	TeamID       *int64    `json:"teamID"` // 管理员可以不属于任何组
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
