package service

import (
	"context"
	"encoding/json"
	"fmt"

	"Halo/config"
	"Halo/dao"
	"Halo/milestone"
	"Halo/models"
	"Halo/pkg/log"
	mq "Halo/pkg/rocketmq"
	"Halo/types"

	"github.com/apache/rocketmq-client-go/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TopicMilestoneAchieved 达成事件通知主题
const TopicMilestoneAchieved = "halo_milestone_achieved"

type MilestoneService struct {
	Config       *config.Config
	DB           *gorm.DB
	Registry     *milestone.Registry
	MilestoneDAO *dao.Milestone
	MQ           rocketmq.Producer
}

var _ IMilestoneService = (*MilestoneService)(nil)

type IMilestoneService interface {
	// EvaluateMilestones 按触发事件评估里程碑。tx 不为 nil 时加入调用方事务，
	// 每条定义用 SAVEPOINT 隔离；评估失败只记日志，绝不向上传播。
	EvaluateMilestones(ctx context.Context, trigger string, ec *milestone.EvalContext, tx *gorm.DB) *types.EvaluateMilestonesResult

	ListDefinitions() []types.MilestoneInfo
	ListUserMilestones(ctx context.Context, userID int64) ([]types.UserMilestoneItem, error)
}

func (s *MilestoneService) EvaluateMilestones(ctx context.Context, trigger string, ec *milestone.EvalContext, tx *gorm.DB) *types.EvaluateMilestonesResult {
	resp := &types.EvaluateMilestonesResult{
		Trigger: trigger,
		Results: make([]types.MilestoneResult, 0),
	}

	// 串行评估，SAVEPOINT 名按序号生成，绝不掺入外部输入
	for i, def := range s.Registry.GetByTrigger(trigger) {
		r := s.evaluateOne(ctx, trigger, fmt.Sprintf("sp_%d", i), def, ec, tx)
		resp.Results = append(resp.Results, r)

		if r.Achieved {
			milestonesAchievedTotal.WithLabelValues(def.Key).Inc()
			s.notifyAchieved(ec.UserID, def.Key, r.Metadata)
		}
	}
	return resp
}

// evaluateOne 单条定义的评估。一条定义出错只回滚它自己的 SAVEPOINT，
// 不能波及兄弟定义，更不能把调用方的整个事务拖下水。
func (s *MilestoneService) evaluateOne(ctx context.Context, trigger, sp string, def *milestone.Definition, ec *milestone.EvalContext, tx *gorm.DB) types.MilestoneResult {
	result := types.MilestoneResult{Key: def.Key}

	db := tx
	if db == nil {
		// 没有外层事务时直接跑，没什么需要保护的
		db = s.DB
	}

	if tx != nil {
		if err := tx.SavePoint(sp).Error; err != nil {
			log.L.Error("create savepoint failed",
				zap.String("trigger", trigger), zap.String("key", def.Key), zap.Error(err))
			return result
		}
	}

	meta, achieved, err := s.runDefinition(ctx, def, ec, db)
	if err != nil {
		if tx != nil {
			if rbErr := tx.RollbackTo(sp).Error; rbErr != nil {
				log.L.Error("rollback to savepoint failed",
					zap.String("key", def.Key), zap.Error(rbErr))
			}
		}
		log.L.Error("evaluate milestone failed",
			zap.String("trigger", trigger),
			zap.String("key", def.Key),
			zap.Int64("user_id", ec.UserID),
			zap.Error(err))
		return result
	}

	result.Achieved = achieved
	result.Metadata = meta
	return result
}

func (s *MilestoneService) runDefinition(ctx context.Context, def *milestone.Definition, ec *milestone.EvalContext, db *gorm.DB) (meta map[string]interface{}, achieved bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("milestone %s panic: %v", def.Key, r)
		}
	}()

	// 幂等：达成过的永不重评、永不重发奖励
	has, err := s.MilestoneDAO.HasAchieved(ctx, db, ec.UserID, def.Key)
	if err != nil || has {
		return nil, false, err
	}

	ok, err := def.Evaluate(ctx, ec, db)
	if err != nil || !ok {
		return nil, false, err
	}

	if def.OnAchieved != nil {
		if meta, err = def.OnAchieved(ctx, ec, db); err != nil {
			return nil, false, err
		}
	}

	var raw datatypes.JSON
	if meta != nil {
		b, mErr := json.Marshal(meta)
		if mErr != nil {
			return nil, false, mErr
		}
		raw = b
	}
	rec := &models.UserMilestone{
		UserID:       ec.UserID,
		MilestoneKey: def.Key,
		Metadata:     raw,
	}
	if err = s.MilestoneDAO.CreateRecord(ctx, db, rec); err != nil {
		return nil, false, err
	}
	return meta, true, nil
}

// notifyAchieved 达成事件投递到 MQ，失败只记日志
func (s *MilestoneService) notifyAchieved(userID int64, key string, meta map[string]interface{}) {
	if s.MQ == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"user_id":       userID,
		"milestone_key": key,
		"metadata":      meta,
	})
	if err != nil {
		return
	}
	if err = mq.SendMsg(s.MQ, TopicMilestoneAchieved, body); err != nil {
		log.L.Warn("notify milestone achieved failed",
			zap.String("key", key), zap.Error(err))
	}
}

func (s *MilestoneService) ListDefinitions() []types.MilestoneInfo {
	defs := s.Registry.GetAll()
	out := make([]types.MilestoneInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, types.MilestoneInfo{
			Key:      d.Key,
			Triggers: d.Triggers,
		})
	}
	return out
}

func (s *MilestoneService) ListUserMilestones(ctx context.Context, userID int64) ([]types.UserMilestoneItem, error) {
	records, err := s.MilestoneDAO.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]types.UserMilestoneItem, 0, len(records))
	for _, r := range records {
		item := types.UserMilestoneItem{
			Key:        r.MilestoneKey,
			AchievedAt: r.AchievedAt.Format("2006-01-02 15:04:05"),
		}
		if len(r.Metadata) > 0 {
			_ = json.Unmarshal(r.Metadata, &item.Metadata)
		}
		out = append(out, item)
	}
	return out, nil
}
