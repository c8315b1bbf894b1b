package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// LeaderboardEntry 排行榜单行，Rank 从1开始
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Level       int    `json:"level"`
	XP          int    `json:"xp"`
}

// LeaderboardFeed 按页拉取的XP排行榜。全量取完后 LoadMore 变成空操作。
type LeaderboardFeed struct {
	mu       sync.Mutex
	entries  []LeaderboardEntry
	total    int
	loaded   bool
	loading  bool
	pageSize int

	remote LeaderboardRemote
	log    *zap.Logger
}

func NewLeaderboardFeed(remote LeaderboardRemote, pageSize int, log *zap.Logger) *LeaderboardFeed {
	if pageSize <= 0 {
		pageSize = 20
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LeaderboardFeed{
		remote:   remote,
		pageSize: pageSize,
		log:      log,
	}
}

// Entries 当前已加载的行，Rank 按全局位置填好
func (f *LeaderboardFeed) Entries() []LeaderboardEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]LeaderboardEntry(nil), f.entries...)
}

func (f *LeaderboardFeed) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// HasMore 还有未加载的页
func (f *LeaderboardFeed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.loaded || len(f.entries) < f.total
}

// LoadMore 取下一页并追加。全量已加载或并发加载中时不发请求。
func (f *LeaderboardFeed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.loading || (f.loaded && len(f.entries) >= f.total) {
		f.mu.Unlock()
		return nil
	}
	f.loading = true
	page := len(f.entries) / f.pageSize
	f.mu.Unlock()

	profiles, total, err := f.remote.GetLeaderboardRanking(ctx, page, f.pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.log.Error("leaderboard page fetch failed", zap.Int("page", page), zap.Error(err))
		return err
	}

	offset := page * f.pageSize
	for i, p := range profiles {
		f.entries = append(f.entries, LeaderboardEntry{
			Rank:        offset + i + 1,
			UserID:      p.UserID,
			Username:    p.Username,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			Level:       p.Level,
			XP:          p.XP,
		})
	}
	f.total = total
	f.loaded = true
	return nil
}

// Refresh 丢弃已加载页，重新拉第一页
func (f *LeaderboardFeed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.entries = nil
	f.total = 0
	f.loaded = false
	f.mu.Unlock()
	return f.LoadMore(ctx)
}
