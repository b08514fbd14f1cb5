// Package grpc 运维用的gRPC服务：标准健康检查 + 反射
//
// 订单存储熔断打开时，OrderService的健康状态切换为NOT_SERVING，
// 负载均衡器可以据此摘除实例；半开和关闭状态视为SERVING。
package grpc

import (
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-orderengine/pkg/circuitbreaker"
)

// OrderServiceName 健康检查中下单能力对应的服务名
const OrderServiceName = "bookstore.orderengine.OrderService"

// Server gRPC服务器
type Server struct {
	srv    *grpclib.Server
	health *health.Server
	port   int
}

// NewServer 创建gRPC服务器并注册健康检查和反射服务
func NewServer(cfg *config.Config) *Server {
	srv := grpclib.NewServer(
		grpclib.MaxRecvMsgSize(4*1024*1024),
		grpclib.MaxSendMsgSize(4*1024*1024),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(OrderServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{srv: srv, health: hs, port: cfg.GRPC.Port}
}

// Health 健康检查服务
func (s *Server) Health() *health.Server {
	return s.health
}

// WatchBreaker 熔断器状态变化时记录日志并同步健康状态
func (s *Server) WatchBreaker(cb *circuitbreaker.CircuitBreaker) {
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		entry := log.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()})
		if to == circuitbreaker.StateOpen {
			entry.Warn("熔断器打开")
			s.health.SetServingStatus(OrderServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
		entry.Info("熔断器状态变化")
		s.health.SetServingStatus(OrderServiceName, healthpb.HealthCheckResponse_SERVING)
	})
}

// Start 监听端口并在后台提供服务
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听gRPC端口失败: %w", err)
	}
	go func() {
		log.WithField("addr", addr).Info("gRPC健康检查服务已启动")
		if err := s.srv.Serve(lis); err != nil {
			log.WithError(err).Error("gRPC服务异常退出")
		}
	}()
	return nil
}

// Stop 先标记下线，再等待进行中的请求结束
func (s *Server) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
