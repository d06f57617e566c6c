package db

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// Heartbeat はctxが終わるまでinterval毎にプールへpingする。
// 失敗はログに残すだけで、リクエスト処理には影響しない。
func Heartbeat(ctx context.Context, gdb *gorm.DB, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := Ping(ctx, gdb); err != nil {
				log.Warn("db heartbeat failed", "error", err)
				continue
			}
			log.Debug("db heartbeat ok")
		}
	}
}

func Ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}
