package util

import "errors"

var (
	// 远端数据网关：无记录时按“使用默认值”处理，不视为硬错误
	ErrNotFound   = errors.New("remote record not found")
	ErrAuthFailed = errors.New("authentication failed")

	// 写作项目
	ErrEmptyTitle       = errors.New("项目标题不能为空")
	ErrInvalidGenre     = errors.New("未知的写作体裁")
	ErrNoCurrentProject = errors.New("no current project")
	ErrProjectNotFound  = errors.New("project not found")

	// 伴侣编辑器配对
	ErrPairingCodeInvalid = errors.New("配对码格式不正确")
	ErrPairingCodeExpired = errors.New("配对码已失效或已被使用")
	ErrSessionNotFound    = errors.New("editor session not found")
	ErrSessionRevoked     = errors.New("editor session revoked or expired")
	ErrSessionLimit       = errors.New("同时配对的编辑器数量已达上限，请先断开其他编辑器")
)
