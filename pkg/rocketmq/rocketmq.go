package rocketmq

import (
	"context"

	"Halo/config"
	"Halo/pkg/log"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/apache/rocketmq-client-go/v2/rlog"
	"go.uber.org/zap"
)

func init() {
	rlog.SetLogLevel("error")
}

// InitProducer 初始化生产者。MQ 不可用时返回 nil，
// 业务侧按 best-effort 处理（丢消息不丢事务）。
func InitProducer(cfg *config.RocketMQConfig) rocketmq.Producer {
	if cfg == nil || len(cfg.NameServer) == 0 {
		log.L.Info("rocketmq not configured, producer disabled")
		return nil
	}

	p, err := rocketmq.NewProducer(
		producer.WithNameServer(cfg.NameServer),
		producer.WithGroupName(cfg.Producer.Group),
		producer.WithRetry(cfg.Producer.Retry),
	)
	if err != nil {
		log.L.Error("new rocketmq producer failed", zap.Error(err))
		return nil
	}

	if err = p.Start(); err != nil {
		log.L.Error("start rocketmq producer failed", zap.Error(err))
		return nil
	}
	log.L.Info("init producer success")

	return p
}

// SendMsg 同步发送
func SendMsg(p rocketmq.Producer, topic string, body []byte) error {
	msg := &primitive.Message{
		Topic: topic,
		Body:  body,
	}

	res, err := p.SendSync(context.Background(), msg)
	if err != nil {
		return err
	}
	log.L.Info("send message success", zap.Any("msg", res.MsgID))
	return nil
}
