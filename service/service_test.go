package service

import (
	"testing"
	"time"

	"Halo/config"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB 用 sqlmock 驱动 gorm 的 mysql dialector
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		App:    &config.App{Env: "test"},
		Wallet: config.DefaultWallet(),
	}
}

// walletRows 一行钱包数据
func walletRows(id uint64, userID int64, walletType string, balance, locked int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "type", "balance", "locked_balance", "created_at", "updated_at"}).
		AddRow(id, userID, walletType, balance, locked, now, now)
}

// emptyWalletRows 查不到钱包
func emptyWalletRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "type", "balance", "locked_balance", "created_at", "updated_at"})
}
