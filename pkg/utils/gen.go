package utils

import (
	"fmt"
	"time"

	"Halo/pkg/snowflake"
)

// GenerateOrderSn 生成全局唯一订单号：日期 + 用户ID尾号 + 雪花ID
func GenerateOrderSn(userID int64) string {
	return fmt.Sprintf("%s%02d%d", time.Now().Format("20060102"), userID%100, snowflake.GenID())
}
