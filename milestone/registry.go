package milestone

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// EvalContext 一次触发事件的上下文。Payload 是触发方自定义的 JSON，
// 评估引擎不关心其结构，由各定义的谓词自行解读。
type EvalContext struct {
	UserID  int64
	Payload json.RawMessage
}

// EvaluateFunc 达成条件谓词，可在事务内读取数据
type EvaluateFunc func(ctx context.Context, ec *EvalContext, tx *gorm.DB) (bool, error)

// AchievedFunc 达成后的奖励回调，返回值作为达成记录的 metadata 持久化。
// 回调内可以继续写库（例如给用户加积分），走同一个事务。
type AchievedFunc func(ctx context.Context, ec *EvalContext, tx *gorm.DB) (map[string]interface{}, error)

// Definition 一条里程碑定义
type Definition struct {
	Key        string   // 全局唯一
	Triggers   []string // 监听的事件名
	Evaluate   EvaluateFunc
	OnAchieved AchievedFunc // 可选
}

// ListensTo 是否监听该触发事件
func (d *Definition) ListensTo(trigger string) bool {
	for _, t := range d.Triggers {
		if t == trigger {
			return true
		}
	}
	return false
}

// Registry 里程碑定义表。进程启动阶段一次性注册完成，
// 之后只读，因此不需要加锁。不用全局变量是为了让测试能各建各的。
type Registry struct {
	defs  map[string]*Definition
	order []string // 保持注册顺序
}

func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
	}
}

// Register 注册定义。key 重复属于启动期配置错误，直接 panic 终止进程。
func (r *Registry) Register(def *Definition) {
	if def == nil || def.Key == "" {
		panic("milestone: register with empty key")
	}
	if def.Evaluate == nil {
		panic(fmt.Sprintf("milestone: definition %q has no evaluate func", def.Key))
	}
	if _, ok := r.defs[def.Key]; ok {
		panic(fmt.Sprintf("milestone: duplicate definition key %q", def.Key))
	}
	r.defs[def.Key] = def
	r.order = append(r.order, def.Key)
}

// GetByTrigger 返回监听该事件的全部定义，按注册顺序
func (r *Registry) GetByTrigger(trigger string) []*Definition {
	out := make([]*Definition, 0)
	for _, key := range r.order {
		if d := r.defs[key]; d.ListensTo(trigger) {
			out = append(out, d)
		}
	}
	return out
}

func (r *Registry) GetByKey(key string) (*Definition, bool) {
	d, ok := r.defs[key]
	return d, ok
}

// GetAll 按注册顺序返回全部定义
func (r *Registry) GetAll() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.defs[key])
	}
	return out
}
