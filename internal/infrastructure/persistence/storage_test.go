package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/persistence/memory"
)

func TestNewStorage_Memory(t *testing.T) {
	cfg := config.Default()

	s, cleanup, err := NewStorage(cfg)
	require.NoError(t, err)
	defer cleanup()

	// 内存模式下目录同时充当库存存储
	catalog, ok := s.Books.(*memory.Catalog)
	require.True(t, ok)
	assert.Same(t, catalog, s.Stock)
	assert.IsType(t, &memory.SessionStore{}, s.Sessions)
	assert.Nil(t, s.Redis)
}

func TestNewStorage_RedisInventoryRequiresRedis(t *testing.T) {
	cfg := config.Default()
	cfg.Inventory.Driver = config.DriverRedis
	cfg.Redis.Enabled = false

	_, _, err := NewStorage(cfg)
	assert.Error(t, err)
}

func TestNewStorage_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "mongo"

	_, _, err := NewStorage(cfg)
	assert.Error(t, err)
}
