// Package store 持有客户端本地状态：学习进度、写作项目、排行榜。
// 状态对象显式构造、按依赖注入传递，不做包级单例；远端访问收窄为小接口，便于测试。
package store

import (
	"context"
	"writequest_app/internal/model"
)

// ProgressRemote 进度同步需要的远端能力
type ProgressRemote interface {
	UpsertProgress(ctx context.Context, userID string, progress *model.Progress) error
}

// ProjectRemote 写作项目定时落库与删除需要的远端能力
type ProjectRemote interface {
	UpsertWritingProject(ctx context.Context, project *model.WritingProject) error
	DeleteWritingProject(ctx context.Context, id string) error
}

// LeaderboardRemote 排行榜分页需要的远端能力
type LeaderboardRemote interface {
	GetLeaderboardRanking(ctx context.Context, page, pageSize int) ([]model.UserProfile, int, error)
}
