// Package catalog 持有编译进程序的课程目录。解锁评估按这里的声明顺序扫描。
package catalog

import "writequest_app/internal/model"

var levels = []model.Level{
	{ID: "mechanics-1", Title: "Capital Letters & Endings", Type: model.LevelTypeMechanics, Prerequisites: nil, XPReward: 50},
	{ID: "mechanics-2", Title: "Super Sentences", Type: model.LevelTypeMechanics, Prerequisites: []string{"mechanics-1"}, XPReward: 50},
	{ID: "mechanics-3", Title: "Punctuation Power", Type: model.LevelTypeMechanics, Prerequisites: []string{"mechanics-2"}, XPReward: 75},
	{ID: "sequencing-1", Title: "Story Order", Type: model.LevelTypeSequencing, Prerequisites: []string{"mechanics-2"}, XPReward: 75},
	{ID: "sequencing-2", Title: "Beginnings, Middles, Ends", Type: model.LevelTypeSequencing, Prerequisites: []string{"sequencing-1"}, XPReward: 100},
	{ID: "sequencing-3", Title: "Plot Maps", Type: model.LevelTypeSequencing, Prerequisites: []string{"sequencing-2"}, XPReward: 100},
	{ID: "voice-1", Title: "Finding Your Voice", Type: model.LevelTypeVoice, Prerequisites: []string{"sequencing-2"}, XPReward: 125},
	{ID: "voice-2", Title: "Show, Don't Tell", Type: model.LevelTypeVoice, Prerequisites: []string{"voice-1"}, XPReward: 125},
	{ID: "voice-3", Title: "Style & Mood", Type: model.LevelTypeVoice, Prerequisites: []string{"voice-2"}, XPReward: 150},
}

// Levels 返回声明顺序的目录副本
func Levels() []model.Level {
	return append([]model.Level(nil), levels...)
}

// Get 按ID查找关卡
func Get(id string) (model.Level, bool) {
	for _, l := range levels {
		if l.ID == id {
			return l, true
		}
	}
	return model.Level{}, false
}

// DefaultUnlocked 无前置条件的关卡，首次登录即解锁
func DefaultUnlocked() []string {
	var ids []string
	for _, l := range levels {
		if len(l.Prerequisites) == 0 {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// CountByType 某阶段的关卡总数
func CountByType(t model.LevelType) int {
	n := 0
	for _, l := range levels {
		if l.Type == t {
			n++
		}
	}
	return n
}
