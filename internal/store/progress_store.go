package store

import (
	"context"
	"fmt"
	"sync"
	"time"
	"writequest_app/internal/catalog"
	"writequest_app/internal/model"

	"go.uber.org/zap"
)

// ProgressStore 学习进度的内存状态。远端不可达时置 offlineChanges 标志，
// 待下次连通或显式调用 SyncWithServer 时重试；同步失败只记日志不上抛。
type ProgressStore struct {
	mu             sync.Mutex
	userID         string
	progress       model.Progress
	offlineChanges bool

	remote ProgressRemote
	log    *zap.Logger
}

// streakDayLayout 连续天数按日历日比较，随进度持久化到远端
const streakDayLayout = "2006-01-02"

func NewProgressStore(remote ProgressRemote, log *zap.Logger) *ProgressStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &ProgressStore{remote: remote, log: log}
	s.progress = *defaultProgress()
	return s
}

func defaultProgress() *model.Progress {
	return &model.Progress{
		UnlockedLevels: catalog.DefaultUnlocked(),
		CurrentLevel:   firstPlayable(nil, catalog.DefaultUnlocked()),
	}
}

// SetUser 登录后绑定用户，进度随用户而非随设备
func (s *ProgressStore) SetUser(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
}

// SetProgress 整体替换进度，数据来自网关或默认值，这里只做形状归一：
// 已完成必须同时算作已解锁
func (s *ProgressStore) SetProgress(p *model.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p.Clone()
	for _, id := range cp.CompletedLevels {
		if !containsString(cp.UnlockedLevels, id) {
			cp.UnlockedLevels = append(cp.UnlockedLevels, id)
		}
	}
	for _, id := range catalog.DefaultUnlocked() {
		if !containsString(cp.UnlockedLevels, id) {
			cp.UnlockedLevels = append(cp.UnlockedLevels, id)
		}
	}
	s.progress = cp
	s.unlockLocked()
}

// ResetProgress 恢复编译内置的默认值，用于登出或远端无记录
func (s *ProgressStore) ResetProgress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = *defaultProgress()
	s.offlineChanges = false
}

// Snapshot 当前进度的副本
func (s *ProgressStore) Snapshot() *model.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Clone()
}

func (s *ProgressStore) HasOfflineChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offlineChanges
}

// CompleteLevel 练习完成事件：记完成、加经验、推进阶段进度并运行解锁评估。
// 修改只落在本地，远端推送交给 SyncWithServer。
func (s *ProgressStore) CompleteLevel(levelID string) error {
	level, ok := catalog.Get(levelID)
	if !ok {
		return errUnknownLevel(levelID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !containsString(s.progress.CompletedLevels, levelID) {
		s.progress.CompletedLevels = append(s.progress.CompletedLevels, levelID)
		s.progress.TotalXP += level.XPReward
	}
	if !containsString(s.progress.UnlockedLevels, levelID) {
		s.progress.UnlockedLevels = append(s.progress.UnlockedLevels, levelID)
	}

	s.recalcStageProgressLocked()
	s.unlockLocked()
	s.progress.CurrentLevel = firstPlayable(s.progress.CompletedLevels, s.progress.UnlockedLevels)
	s.offlineChanges = true
	return nil
}

// RecordDailyStreak 当日首次活跃时累计连续天数，断档则重置为1。
// 最近活跃日是进度的一部分，重新登录加载远端进度后连续天数照常续算。
func (s *ProgressStore) RecordDailyStreak(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := now.Format(streakDayLayout)
	switch s.progress.LastStreakDay {
	case today:
		return
	case now.AddDate(0, 0, -1).Format(streakDayLayout):
		s.progress.DailyStreak++
	default:
		s.progress.DailyStreak = 1
	}
	s.progress.LastStreakDay = today
	s.offlineChanges = true
}

// CheckAndUnlockNextContent 按目录声明顺序扫描，前置全部完成即解锁；
// 幂等，到达不动点后再跑不会有进一步变化
func (s *ProgressStore) CheckAndUnlockNextContent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unlockLocked()
}

func (s *ProgressStore) unlockLocked() {
	for _, level := range catalog.Levels() {
		if containsString(s.progress.UnlockedLevels, level.ID) {
			continue
		}
		ready := true
		for _, prereq := range level.Prerequisites {
			if !containsString(s.progress.CompletedLevels, prereq) {
				ready = false
				break
			}
		}
		if ready {
			s.progress.UnlockedLevels = append(s.progress.UnlockedLevels, level.ID)
		}
	}
}

func (s *ProgressStore) recalcStageProgressLocked() {
	s.progress.MechanicsProgress = stagePercent(s.progress.CompletedLevels, model.LevelTypeMechanics)
	s.progress.SequencingProgress = stagePercent(s.progress.CompletedLevels, model.LevelTypeSequencing)
	s.progress.VoiceProgress = stagePercent(s.progress.CompletedLevels, model.LevelTypeVoice)
}

// SyncWithServer 有积压变更时才推送；成功清标志，失败保留待下次重试
func (s *ProgressStore) SyncWithServer(ctx context.Context) error {
	s.mu.Lock()
	if !s.offlineChanges {
		s.mu.Unlock()
		return nil
	}
	userID := s.userID
	snapshot := s.progress.Clone()
	s.mu.Unlock()

	if err := s.remote.UpsertProgress(ctx, userID, snapshot); err != nil {
		s.log.Error("progress sync failed, will retry", zap.String("user", userID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.offlineChanges = false
	s.mu.Unlock()
	return nil
}

// firstPlayable 目录顺序中第一个已解锁未完成的关卡
func firstPlayable(completed, unlocked []string) string {
	for _, level := range catalog.Levels() {
		if containsString(unlocked, level.ID) && !containsString(completed, level.ID) {
			return level.ID
		}
	}
	return ""
}

func stagePercent(completed []string, t model.LevelType) int {
	total := catalog.CountByType(t)
	if total == 0 {
		return 0
	}
	done := 0
	for _, id := range completed {
		if level, ok := catalog.Get(id); ok && level.Type == t {
			done++
		}
	}
	return done * 100 / total
}

func errUnknownLevel(id string) error {
	return fmt.Errorf("unknown level %q", id)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
