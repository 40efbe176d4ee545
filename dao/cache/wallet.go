package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WalletStorage 钱包概览缓存。写路径只负责失效，读路径回填。
type WalletStorage struct {
	redis *redis.Client
}

func NewWalletStorage(redis *redis.Client) *WalletStorage {
	return &WalletStorage{redis: redis}
}

func (w *WalletStorage) key(userID int64) string {
	return fmt.Sprintf("wallet:dashboard:%d", userID)
}

func (w *WalletStorage) Get(ctx context.Context, userID int64, dest interface{}) bool {
	val, err := w.redis.Get(ctx, w.key(userID)).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func (w *WalletStorage) Set(ctx context.Context, userID int64, data interface{}, expire time.Duration) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return w.redis.Set(ctx, w.key(userID), body, expire).Err()
}

// Del 余额发生任何变动后调用
func (w *WalletStorage) Del(ctx context.Context, userID int64) error {
	return w.redis.Del(ctx, w.key(userID)).Err()
}
