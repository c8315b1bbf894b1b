package model

// Progress 学习进度。不变式：CompletedLevels 必然是 UnlockedLevels 的子集，
// 所有修改入口负责维持该关系。
// swagger:model Progress
type Progress struct {
	TotalXP            int      `json:"total_xp"`
	DailyStreak        int      `json:"daily_streak"`
	CompletedLevels    []string `json:"completed_levels"`
	UnlockedLevels     []string `json:"unlocked_levels"`
	MechanicsProgress  int      `json:"mechanics_progress"`
	SequencingProgress int      `json:"sequencing_progress"`
	VoiceProgress      int      `json:"voice_progress"`
	CurrentLevel       string   `json:"current_level,omitempty"`
	// LastStreakDay 最近活跃的日历日（2006-01-02），连续天数跨会话续算靠它
	LastStreakDay string `json:"last_streak_day,omitempty"`
}

// Clone 深拷贝，store 对外只交出副本
func (p *Progress) Clone() *Progress {
	cp := *p
	cp.CompletedLevels = append([]string(nil), p.CompletedLevels...)
	cp.UnlockedLevels = append([]string(nil), p.UnlockedLevels...)
	return &cp
}

// HasCompleted 判断关卡是否已完成
func (p *Progress) HasCompleted(levelID string) bool {
	for _, id := range p.CompletedLevels {
		if id == levelID {
			return true
		}
	}
	return false
}

// HasUnlocked 判断关卡是否已解锁
func (p *Progress) HasUnlocked(levelID string) bool {
	for _, id := range p.UnlockedLevels {
		if id == levelID {
			return true
		}
	}
	return false
}
