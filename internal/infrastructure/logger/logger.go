// Package logger 基于logrus的结构化日志
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
)

// New 按配置初始化logrus的全局Logger并返回
//
// 各包直接使用 log "github.com/sirupsen/logrus" 的包级函数，
// 所以这里配置的是StandardLogger而不是新建实例。
// cleanup关闭日志文件（输出到文件时）。
func New(cfg config.LogConfig) (*logrus.Logger, func(), error) {
	l := logrus.StandardLogger()
	cleanup := func() {}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch cfg.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	l.SetReportCaller(cfg.EnableCaller)

	out, closeFn, err := output(cfg.Output)
	if err != nil {
		return nil, cleanup, err
	}
	l.SetOutput(out)
	if closeFn != nil {
		cleanup = func() { _ = closeFn() }
	}

	return l, cleanup, nil
}

func output(target string) (io.Writer, func() error, error) {
	switch target {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	default:
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		return f, f.Close, nil
	}
}
