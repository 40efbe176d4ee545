package types

// MilestoneResult 单条定义的评估结果
type MilestoneResult struct {
	Key      string                 `json:"key"`
	Achieved bool                   `json:"achieved"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// EvaluateMilestonesResult 一次触发的完整评估结果
type EvaluateMilestonesResult struct {
	Trigger string            `json:"trigger"`
	Results []MilestoneResult `json:"results"`
}

// MilestoneInfo 注册表里的定义信息（诊断/列表用）
type MilestoneInfo struct {
	Key      string   `json:"key"`
	Triggers []string `json:"triggers"`
}

// UserMilestoneItem 用户已达成的里程碑
type UserMilestoneItem struct {
	Key        string                 `json:"key"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	AchievedAt string                 `json:"achieved_at"`
}
