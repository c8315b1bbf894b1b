package model

// LevelType 学习路径的三个阶段
type LevelType string

const (
	LevelTypeMechanics  LevelType = "mechanics"
	LevelTypeSequencing LevelType = "sequencing"
	LevelTypeVoice      LevelType = "voice"
)

// Level 课程目录中的一个关卡。目录编译进程序，顺序即声明顺序，
// 前置关卡全部完成后该关卡解锁。
// swagger:model Level
type Level struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Type          LevelType `json:"type"`
	Prerequisites []string  `json:"prerequisites"`
	XPReward      int       `json:"xp_reward"`
}
