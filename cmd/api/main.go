package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/logger"
	"github.com/xiebiao/bookstore-orderengine/pkg/tracing"
)

// @title           Bookstore Order Engine API
// @version         1.0
// @description     图书商城下单与库存一致性服务
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 格式: Bearer {access_token}
func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("服务启动失败")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	_, closeLog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer closeLog()

	shutdownTracer, err := tracing.InitTracer(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("初始化链路追踪失败: %w", err)
	}

	log.WithFields(log.Fields{
		"port":      cfg.Server.Port,
		"mode":      cfg.Server.Mode,
		"storage":   cfg.Storage.Driver,
		"inventory": cfg.Inventory.Driver,
		"mq":        cfg.MQ.Driver,
	}).Info("配置加载成功")

	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	defer cleanup()

	if err := app.Seeder.Seed(context.Background()); err != nil {
		return fmt.Errorf("初始化管理员失败: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP服务已启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.GRPC.Enabled {
		if err := app.GRPC.Start(); err != nil {
			return err
		}
		defer app.GRPC.Stop()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("收到关闭信号，开始优雅关闭")
	case err := <-errCh:
		return fmt.Errorf("HTTP服务异常退出: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("HTTP服务关闭超时")
	}
	if err := shutdownTracer(ctx); err != nil {
		log.WithError(err).Warn("刷新追踪数据失败")
	}

	log.Info("服务已安全关闭")
	return nil
}
