package store

import (
	"context"
	"errors"
	"testing"
	"time"
	"writequest_app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProgressRemote struct {
	calls  int
	failed bool
	last   *model.Progress
}

func (f *fakeProgressRemote) UpsertProgress(ctx context.Context, userID string, progress *model.Progress) error {
	f.calls++
	if f.failed {
		return errors.New("network unreachable")
	}
	f.last = progress
	return nil
}

func TestNewProgressStoreDefaults(t *testing.T) {
	s := NewProgressStore(&fakeProgressRemote{}, nil)

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.TotalXP)
	assert.Contains(t, snap.UnlockedLevels, "mechanics-1")
	assert.Empty(t, snap.CompletedLevels)
	assert.Equal(t, "mechanics-1", snap.CurrentLevel)
	assert.False(t, s.HasOfflineChanges())
}

func TestCompleteLevelAwardsXPAndUnlocks(t *testing.T) {
	s := NewProgressStore(&fakeProgressRemote{}, nil)

	require.NoError(t, s.CompleteLevel("mechanics-1"))

	snap := s.Snapshot()
	assert.Equal(t, 50, snap.TotalXP)
	assert.Contains(t, snap.CompletedLevels, "mechanics-1")
	assert.Contains(t, snap.UnlockedLevels, "mechanics-2", "completing the prerequisite should unlock the next level")
	assert.Equal(t, "mechanics-2", snap.CurrentLevel)
	assert.True(t, s.HasOfflineChanges())
}

func TestCompleteLevelIsIdempotentForXP(t *testing.T) {
	s := NewProgressStore(&fakeProgressRemote{}, nil)

	require.NoError(t, s.CompleteLevel("mechanics-1"))
	require.NoError(t, s.CompleteLevel("mechanics-1"))

	assert.Equal(t, 50, s.Snapshot().TotalXP, "replaying a completion must not award XP twice")
}

func TestCompleteLevelUnknownID(t *testing.T) {
	s := NewProgressStore(&fakeProgressRemote{}, nil)
	assert.Error(t, s.CompleteLevel("mechanics-99"))
	assert.False(t, s.HasOfflineChanges())
}

func TestCompletingChainUnlocksBranches(t *testing.T) {
	s := NewProgressStore(&fakeProgressRemote{}, nil)

	require.NoError(t, s.CompleteLevel("mechanics-1"))
	require.NoError(t, s.CompleteLevel("mechanics-2"))

	snap := s.Snapshot()
	// mechanics-2 gates both the next mechanics level and the sequencing stage
	assert.Contains(t, snap.UnlockedLevels, "mechanics-3")
	assert.Contains(t, snap.UnlockedLevels, "sequencing-1")
	assert.NotContains(t, snap.UnlockedLevels, "sequencing-2")
}

func TestSetProgressNormalizesCompletedIntoUnlocked(t *testing.T) {
	s := NewProgressStore(&fakeProgressRemote{}, nil)

	s.SetProgress(&model.Progress{
		TotalXP:         100,
		CompletedLevels: []string{"mechanics-1", "mechanics-2"},
		UnlockedLevels:  []string{"mechanics-1"},
	})

	snap := s.Snapshot()
	assert.Contains(t, snap.UnlockedLevels, "mechanics-2", "completed levels must count as unlocked")
	assert.Contains(t, snap.UnlockedLevels, "mechanics-3", "unlock evaluation runs after replacing progress")
	assert.Equal(t, 100, snap.TotalXP)
}

func TestCheckAndUnlockNextContentIsIdempotent(t *testing.T) {
	s := NewProgressStore(&fakeProgressRemote{}, nil)
	require.NoError(t, s.CompleteLevel("mechanics-1"))

	before := s.Snapshot()
	s.CheckAndUnlockNextContent()
	s.CheckAndUnlockNextContent()
	after := s.Snapshot()

	assert.Equal(t, before.UnlockedLevels, after.UnlockedLevels)
}

func TestRecordDailyStreak(t *testing.T) {
	s := NewProgressStore(&fakeProgressRemote{}, nil)
	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	s.RecordDailyStreak(day1)
	assert.Equal(t, 1, s.Snapshot().DailyStreak)

	// 同一天再次活跃不重复累计
	s.RecordDailyStreak(day1.Add(5 * time.Hour))
	assert.Equal(t, 1, s.Snapshot().DailyStreak)

	// 次日累计
	s.RecordDailyStreak(day1.Add(24 * time.Hour))
	assert.Equal(t, 2, s.Snapshot().DailyStreak)

	// 断档重置
	s.RecordDailyStreak(day1.Add(96 * time.Hour))
	assert.Equal(t, 1, s.Snapshot().DailyStreak)
}

func TestRecordDailyStreakUsesCalendarDays(t *testing.T) {
	s := NewProgressStore(&fakeProgressRemote{}, nil)
	lateNight := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)

	s.RecordDailyStreak(lateNight)
	// 跨过午夜即算次日，哪怕相隔不足24小时
	s.RecordDailyStreak(lateNight.Add(2 * time.Hour))
	assert.Equal(t, 2, s.Snapshot().DailyStreak)
}

func TestRecordDailyStreakSurvivesReload(t *testing.T) {
	s := NewProgressStore(&fakeProgressRemote{}, nil)

	// 模拟登录后从远端加载回来的进度
	s.SetProgress(&model.Progress{
		DailyStreak:   7,
		LastStreakDay: "2026-03-10",
	})

	s.RecordDailyStreak(time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC))
	snap := s.Snapshot()
	assert.Equal(t, 8, snap.DailyStreak, "streak continues across sessions")
	assert.Equal(t, "2026-03-11", snap.LastStreakDay)

	// 断档多日后重新活跃，从1重新数
	s.RecordDailyStreak(time.Date(2026, 3, 20, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, s.Snapshot().DailyStreak)
}

func TestSyncWithServerSkipsWhenClean(t *testing.T) {
	remote := &fakeProgressRemote{}
	s := NewProgressStore(remote, nil)

	require.NoError(t, s.SyncWithServer(context.Background()))
	assert.Equal(t, 0, remote.calls, "clean state must not hit the network")
}

func TestSyncWithServerKeepsFlagOnFailure(t *testing.T) {
	remote := &fakeProgressRemote{failed: true}
	s := NewProgressStore(remote, nil)
	s.SetUser("user-1")
	require.NoError(t, s.CompleteLevel("mechanics-1"))

	assert.Error(t, s.SyncWithServer(context.Background()))
	assert.True(t, s.HasOfflineChanges(), "failed sync keeps changes queued")

	remote.failed = false
	require.NoError(t, s.SyncWithServer(context.Background()))
	assert.False(t, s.HasOfflineChanges())
	require.NotNil(t, remote.last)
	assert.Equal(t, 50, remote.last.TotalXP)
}

func TestResetProgress(t *testing.T) {
	s := NewProgressStore(&fakeProgressRemote{}, nil)
	require.NoError(t, s.CompleteLevel("mechanics-1"))

	s.ResetProgress()

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.TotalXP)
	assert.Empty(t, snap.CompletedLevels)
	assert.False(t, s.HasOfflineChanges())
}
