package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserMilestone 里程碑达成记录。
// (user_id, milestone_key) 唯一，这是整个评估引擎的幂等保证。
type UserMilestone struct {
	ID           uint64         `gorm:"primaryKey;column:id"`
	UserID       int64          `gorm:"column:user_id;not null;uniqueIndex:uk_user_milestone"`
	MilestoneKey string         `gorm:"column:milestone_key;type:varchar(64);not null;uniqueIndex:uk_user_milestone"`
	Metadata     datatypes.JSON `gorm:"column:metadata"` // OnAchieved 的返回值
	AchievedAt   time.Time      `gorm:"column:achieved_at;autoCreateTime"`
}

func (UserMilestone) TableName() string {
	return "user_milestones"
}
