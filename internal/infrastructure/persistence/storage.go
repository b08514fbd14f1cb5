// Package persistence 按配置组装存储实现
package persistence

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/book"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/category"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/user"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/persistence/redis"
)

// Transactor 在同一事务中执行fn，事务经ctx传递给仓储
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Storage 全部仓储
type Storage struct {
	Books      book.Repository
	Stock      inventory.StockStore
	Orders     order.Repository
	Users      user.Repository
	Categories category.Repository
	Sessions   user.SessionStore
	Tx         Transactor

	// Redis 未启用时为nil
	Redis *goredis.Client
}

// NewStorage 根据storage.driver和inventory.driver创建存储
func NewStorage(cfg *config.Config) (*Storage, func(), error) {
	var (
		s        = &Storage{}
		cleanups []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	switch cfg.Storage.Driver {
	case config.DriverMySQL:
		db, closeDB, err := mysql.NewDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, closeDB)
		s.Books = mysql.NewBookRepository(db)
		s.Stock = mysql.NewStockStore(db)
		s.Orders = mysql.NewOrderRepository(db)
		s.Users = mysql.NewUserRepository(db)
		s.Categories = mysql.NewCategoryRepository(db)
		s.Tx = mysql.NewTxManager(db)
	case config.DriverMemory, "":
		catalog := memory.NewCatalog()
		s.Books = catalog
		s.Stock = catalog
		s.Orders = memory.NewOrderRepository()
		s.Users = memory.NewUserRepository()
		s.Categories = memory.NewCategoryRepository()
		s.Tx = memory.NewTransactor()
	default:
		return nil, nil, fmt.Errorf("未知的存储驱动: %s", cfg.Storage.Driver)
	}

	if cfg.Redis.Enabled {
		client, closeRedis, err := redis.NewClient(cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, closeRedis)
		s.Redis = client
		s.Sessions = redis.NewSessionStore(client)
	} else {
		s.Sessions = memory.NewSessionStore()
	}

	if cfg.Inventory.Driver == config.DriverRedis {
		if s.Redis == nil {
			cleanup()
			return nil, nil, fmt.Errorf("inventory.driver=redis 需要启用redis")
		}
		s.Stock = redis.NewStockStore(s.Redis, s.Books)
	}

	log.WithFields(log.Fields{
		"storage":   cfg.Storage.Driver,
		"inventory": cfg.Inventory.Driver,
		"redis":     cfg.Redis.Enabled,
	}).Info("存储初始化完成")
	return s, cleanup, nil
}
