//go:build wireinject
// +build wireinject

// Wire依赖注入配置，修改后执行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"

	appbook "github.com/xiebiao/bookstore-orderengine/internal/application/book"
	appcategory "github.com/xiebiao/bookstore-orderengine/internal/application/category"
	apporder "github.com/xiebiao/bookstore-orderengine/internal/application/order"
	appuser "github.com/xiebiao/bookstore-orderengine/internal/application/user"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/messaging"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/persistence"
	grpcserver "github.com/xiebiao/bookstore-orderengine/internal/interface/grpc"
	"github.com/xiebiao/bookstore-orderengine/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-orderengine/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-orderengine/internal/interface/http/router"
)

// infrastructureSet 存储、消息、熔断
var infrastructureSet = wire.NewSet(
	persistence.NewStorage,
	wire.FieldsOf(new(*persistence.Storage), "Books", "Stock", "Orders", "Users", "Categories", "Sessions"),
	provideTransactor,
	messaging.NewOrderEventPublisher,
	wire.Bind(new(apporder.EventPublisher), new(*messaging.OrderEventPublisher)),
	provideBreaker,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	provideUserService,
	provideInventory,
	wire.Bind(new(apporder.Reserver), new(*inventory.Service)),
	wire.Bind(new(apporder.Restocker), new(*inventory.Service)),
	wire.Bind(new(appbook.StockKeeper), new(*inventory.Service)),
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	provideLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshUseCase,
	appuser.NewProfileUseCase,
	appuser.NewAdminSeeder,
	appbook.NewCatalogUseCase,
	appcategory.NewUseCase,
	provideAssembler,
	providePlaceOrderUseCase,
	apporder.NewQueryOrdersUseCase,
	apporder.NewUpdateStatusUseCase,
)

// interfaceSet HTTP与gRPC
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewCategoryHandler,
	handler.NewOrderHandler,
	router.NewHandlers,
	router.New,
	grpcserver.NewServer,
)

// InitializeApp 组装应用，cleanup按创建的逆序释放资源
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
