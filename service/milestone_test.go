package service

import (
	"context"
	"errors"
	"testing"

	"Halo/dao"
	"Halo/milestone"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/gorm"
)

func newMilestoneService(t *testing.T, reg *milestone.Registry) (*MilestoneService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	svc := &MilestoneService{
		Config:       testConfig(),
		DB:           db,
		Registry:     reg,
		MilestoneDAO: dao.NewMilestone(db),
	}
	return svc, mock
}

func achievedCountRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count(*)"}).AddRow(n)
}

// 两条定义串行评估：第一条已达成过直接跳过，第二条新达成落一条记录
func TestEvaluateMilestones_InCallerTx(t *testing.T) {
	reg := milestone.NewRegistry()
	reg.Register(&milestone.Definition{
		Key:      "def_a",
		Triggers: []string{"test_event"},
		Evaluate: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (bool, error) {
			return true, nil
		},
	})
	reg.Register(&milestone.Definition{
		Key:      "def_b",
		Triggers: []string{"test_event"},
		Evaluate: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (bool, error) {
			return true, nil
		},
	})
	svc, mock := newMilestoneService(t, reg)

	mock.ExpectBegin()
	mock.ExpectExec("^SAVEPOINT sp_0$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `user_milestones`").
		WillReturnRows(achievedCountRows(1))
	mock.ExpectExec("^SAVEPOINT sp_1$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `user_milestones`").
		WillReturnRows(achievedCountRows(0))
	mock.ExpectExec("INSERT INTO `user_milestones`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ec := &milestone.EvalContext{UserID: 7}
	err := svc.DB.Transaction(func(tx *gorm.DB) error {
		res := svc.EvaluateMilestones(context.Background(), "test_event", ec, tx)
		if len(res.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(res.Results))
		}
		if res.Results[0].Key != "def_a" || res.Results[0].Achieved {
			t.Fatalf("def_a should be skipped as already achieved: %+v", res.Results[0])
		}
		if res.Results[1].Key != "def_b" || !res.Results[1].Achieved {
			t.Fatalf("def_b should be newly achieved: %+v", res.Results[1])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// 一条定义的奖励回调失败，只回滚它自己的 SAVEPOINT，
// 兄弟定义照常达成，外层事务照常提交
func TestEvaluateMilestones_DefinitionFailureIsolated(t *testing.T) {
	reg := milestone.NewRegistry()
	reg.Register(&milestone.Definition{
		Key:      "broken",
		Triggers: []string{"test_event"},
		Evaluate: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (bool, error) {
			return true, nil
		},
		OnAchieved: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (map[string]interface{}, error) {
			return nil, errors.New("奖励发放失败")
		},
	})
	reg.Register(&milestone.Definition{
		Key:      "healthy",
		Triggers: []string{"test_event"},
		Evaluate: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (bool, error) {
			return true, nil
		},
	})
	svc, mock := newMilestoneService(t, reg)

	mock.ExpectBegin()
	mock.ExpectExec("^SAVEPOINT sp_0$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `user_milestones`").
		WillReturnRows(achievedCountRows(0))
	mock.ExpectExec("^ROLLBACK TO SAVEPOINT sp_0$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("^SAVEPOINT sp_1$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `user_milestones`").
		WillReturnRows(achievedCountRows(0))
	mock.ExpectExec("INSERT INTO `user_milestones`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ec := &milestone.EvalContext{UserID: 7}
	err := svc.DB.Transaction(func(tx *gorm.DB) error {
		res := svc.EvaluateMilestones(context.Background(), "test_event", ec, tx)
		if res.Results[0].Achieved {
			t.Fatal("broken definition must not report achieved")
		}
		if !res.Results[1].Achieved {
			t.Fatal("healthy definition should still achieve")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("caller transaction must survive definition failure: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// 定义代码 panic 同样只影响它自己
func TestEvaluateMilestones_PanicContained(t *testing.T) {
	reg := milestone.NewRegistry()
	reg.Register(&milestone.Definition{
		Key:      "panicky",
		Triggers: []string{"test_event"},
		Evaluate: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (bool, error) {
			panic("谓词写炸了")
		},
	})
	svc, mock := newMilestoneService(t, reg)

	mock.ExpectBegin()
	mock.ExpectExec("^SAVEPOINT sp_0$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `user_milestones`").
		WillReturnRows(achievedCountRows(0))
	mock.ExpectExec("^ROLLBACK TO SAVEPOINT sp_0$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ec := &milestone.EvalContext{UserID: 7}
	err := svc.DB.Transaction(func(tx *gorm.DB) error {
		res := svc.EvaluateMilestones(context.Background(), "test_event", ec, tx)
		if res.Results[0].Achieved {
			t.Fatal("panicking definition must not report achieved")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("panic must not escape evaluation: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// 无外层事务时直接在连接上评估，达成记录保证第二次评估是空转
func TestEvaluateMilestones_Idempotent(t *testing.T) {
	reg := milestone.NewRegistry()
	reg.Register(&milestone.Definition{
		Key:      "once",
		Triggers: []string{"test_event"},
		Evaluate: func(ctx context.Context, ec *milestone.EvalContext, tx *gorm.DB) (bool, error) {
			return true, nil
		},
	})
	svc, mock := newMilestoneService(t, reg)
	ec := &milestone.EvalContext{UserID: 7}

	// 第一次：未达成，落记录
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `user_milestones`").
		WillReturnRows(achievedCountRows(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `user_milestones`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res := svc.EvaluateMilestones(context.Background(), "test_event", ec, nil)
	if !res.Results[0].Achieved {
		t.Fatal("first evaluation should achieve")
	}

	// 第二次：已达成，直接跳过，不再写库
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `user_milestones`").
		WillReturnRows(achievedCountRows(1))

	res = svc.EvaluateMilestones(context.Background(), "test_event", ec, nil)
	if res.Results[0].Achieved {
		t.Fatal("second evaluation must be a no-op")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// 没人监听的事件返回空结果，不摸数据库
func TestEvaluateMilestones_NoListeners(t *testing.T) {
	svc, mock := newMilestoneService(t, milestone.NewRegistry())

	res := svc.EvaluateMilestones(context.Background(), "nobody_cares", &milestone.EvalContext{UserID: 7}, nil)
	if res.Trigger != "nobody_cares" || len(res.Results) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
