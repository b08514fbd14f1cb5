package main

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookstore-orderengine/internal/application/order"
	appuser "github.com/xiebiao/bookstore-orderengine/internal/application/user"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/user"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/persistence"
	grpcserver "github.com/xiebiao/bookstore-orderengine/internal/interface/grpc"
	"github.com/xiebiao/bookstore-orderengine/pkg/circuitbreaker"
	"github.com/xiebiao/bookstore-orderengine/pkg/jwt"
)

// App 启动所需的全部组件
type App struct {
	Config  *config.Config
	Engine  *gin.Engine
	GRPC    *grpcserver.Server
	Breaker *circuitbreaker.CircuitBreaker
	Seeder  *appuser.AdminSeeder
}

func newApp(
	cfg *config.Config,
	engine *gin.Engine,
	grpcServer *grpcserver.Server,
	breaker *circuitbreaker.CircuitBreaker,
	seeder *appuser.AdminSeeder,
) *App {
	grpcServer.WatchBreaker(breaker)
	return &App{
		Config:  cfg,
		Engine:  engine,
		GRPC:    grpcServer,
		Breaker: breaker,
		Seeder:  seeder,
	}
}

// 下面的Provider从Config中取出构造函数需要的参数

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideUserService(cfg *config.Config, repo user.Repository) user.Service {
	return user.NewService(repo, cfg.Auth.BcryptCost)
}

func provideLoginUseCase(cfg *config.Config, userService user.Service, jwtManager *jwt.Manager, sessions user.SessionStore) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(userService, jwtManager, sessions, cfg.Auth.SessionTTL)
}

func provideInventory(cfg *config.Config, store inventory.StockStore) *inventory.Service {
	return inventory.NewService(store, inventory.WithMaxAttempts(cfg.Inventory.MaxAttempts))
}

func provideTransactor(s *persistence.Storage) apporder.Transactor {
	return s.Tx
}

func provideBreaker(cfg *config.Config) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker("order-store", circuitbreaker.Config{
		MaxRequests: cfg.CircuitBreaker.MaxRequests,
		Interval:    cfg.CircuitBreaker.Interval,
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: circuitbreaker.ConsecutiveFailures(cfg.CircuitBreaker.ConsecutiveFailures),
	})
}

func provideAssembler(cfg *config.Config, reserver apporder.Reserver) *apporder.Assembler {
	return apporder.NewAssembler(reserver, cfg.Order.SagaTimeout, cfg.Order.MaxLines)
}

func providePlaceOrderUseCase(
	cfg *config.Config,
	assembler *apporder.Assembler,
	orders order.Repository,
	breaker *circuitbreaker.CircuitBreaker,
	events apporder.EventPublisher,
) *apporder.PlaceOrderUseCase {
	return apporder.NewPlaceOrderUseCase(assembler, orders, breaker, events, cfg.Order.PersistTimeout)
}
