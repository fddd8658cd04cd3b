package domain

import "errors"

var (
	ErrConfigurationMissing       = errors.New("指定日期没有生效的轮换配置")
	ErrPatternIndexMissing        = errors.New("轮换配置缺少对应偏移量的表项")
	ErrInvalidShiftPatternConfig  = errors.New("无效的轮换配置")
	ErrShiftPatternConfigNotFound = errors.New("轮换配置不存在")
	ErrTeamNotFound               = errors.New("组不存在")
	ErrUserNotFound               = errors.New("用户不存在")
	ErrWorklogNotFound            = errors.New("工作日志不存在")
	ErrConcurrentModification     = errors.New("工作日志已被其他操作修改")
	ErrDuplicateCreate            = errors.New("工作日志已存在")
	ErrWorklogClosed              = errors.New("工作日志已关闭")
	ErrAlreadySigned              = errors.New("该角色已签名")
)
