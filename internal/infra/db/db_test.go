package db

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig() config.Config {
	return config.Config{DBDriver: "sqlite", DatabaseURL: "file::memory:?cache=shared"}
}

func TestConnectMigrateSeed(t *testing.T) {
	ctx := context.Background()
	gdb, err := Connect(ctx, sqliteConfig())
	require.NoError(t, err)

	require.NoError(t, Migrate(gdb))

	opts := SeedOptions{AdminEmail: "Admin@Example.com", AdminPassword: "changeme123"}
	require.NoError(t, Seed(ctx, gdb, opts))
	// 2回目も重複しない
	require.NoError(t, Seed(ctx, gdb, opts))

	var products, categories, admins int64
	require.NoError(t, gdb.Model(&model.Product{}).Count(&products).Error)
	require.NoError(t, gdb.Model(&model.Category{}).Count(&categories).Error)
	require.NoError(t, gdb.Model(&model.User{}).Where("email = ? AND role = ?", "admin@example.com", model.RoleAdmin).Count(&admins).Error)

	assert.Equal(t, int64(len(seedProducts)), products)
	assert.Equal(t, int64(len(seedCategories)), categories)
	assert.Equal(t, int64(1), admins)
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(context.Background(), config.Config{DBDriver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestHeartbeat_StopsOnCancel(t *testing.T) {
	gdb, err := Connect(context.Background(), sqliteConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Heartbeat(ctx, gdb, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("heartbeat did not stop")
	}
	assert.NoError(t, Ping(context.Background(), gdb))
}
