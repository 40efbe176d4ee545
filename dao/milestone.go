package dao

import (
	"context"

	"Halo/models"

	"gorm.io/gorm"
)

type Milestone struct {
	Repo[models.UserMilestone]
}

func NewMilestone(db *gorm.DB) *Milestone {
	return &Milestone{
		Repo: NewRepo[models.UserMilestone](db),
	}
}

// HasAchieved 幂等检查，必须走当前事务
func (m *Milestone) HasAchieved(ctx context.Context, tx *gorm.DB, userID int64, key string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&models.UserMilestone{}).
		Where("user_id = ? AND milestone_key = ?", userID, key).
		Count(&count).Error
	return count > 0, err
}

func (m *Milestone) CreateRecord(ctx context.Context, tx *gorm.DB, rec *models.UserMilestone) error {
	return tx.WithContext(ctx).Create(rec).Error
}

func (m *Milestone) ListByUser(ctx context.Context, userID int64) ([]models.UserMilestone, error) {
	var records []models.UserMilestone
	err := m.Db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("achieved_at DESC").
		Find(&records).Error
	return records, err
}
