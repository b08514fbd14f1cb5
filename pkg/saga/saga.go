// Package saga 有序步骤 + 逆序补偿
//
// 下单时每个订单行的库存预占是一个步骤，补偿是释放该行的预占。
// 任一步骤失败时，已完成的步骤按逆序补偿，调用方拿到的是失败步骤的原始错误。
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/bookstore-orderengine/pkg/metrics"
)

// ErrTimeout saga整体超时
var ErrTimeout = errors.New("saga timeout")

// Step 表示Saga中的一个步骤
type Step struct {
	Name       string                          // 步骤名称（用于日志）
	Action     func(ctx context.Context) error // 正向操作
	Compensate func(ctx context.Context) error // 补偿操作，可为nil
}

// StepError 某一步骤失败
type StepError struct {
	Index int
	Name  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("步骤[%d:%s]执行失败: %v", e.Index, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Saga 一次性的步骤序列，不可并发使用
type Saga struct {
	steps    []Step
	executed []Step
	timeout  time.Duration
}

// NewSaga 创建Saga，timeout<=0表示不设整体超时
func NewSaga(timeout time.Duration) *Saga {
	return &Saga{
		steps:   make([]Step, 0),
		timeout: timeout,
	}
}

// AddStep 按执行顺序追加步骤
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Len 步骤数
func (s *Saga) Len() int {
	return len(s.steps)
}

// Execute 按顺序执行全部步骤
//
// 失败或超时时已完成的步骤立即逆序补偿，返回*StepError。
// 全部成功时已完成步骤保留，调用方在后续环节失败时可以再调用Rollback。
func (s *Saga) Execute(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.SagaExecutionDuration.Observe(time.Since(start).Seconds())
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", ErrTimeout, err)
			}
			return s.fail(ctx, i, step.Name, err)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				return s.fail(ctx, i, step.Name, err)
			}
		}
		s.executed = append(s.executed, step)
	}

	metrics.SagaExecutionsTotal.WithLabelValues("success").Inc()
	return nil
}

func (s *Saga) fail(ctx context.Context, index int, name string, err error) error {
	metrics.SagaExecutionsTotal.WithLabelValues("failure").Inc()
	// 补偿不受原请求取消/超时影响
	_ = s.Rollback(context.WithoutCancel(ctx))
	return &StepError{Index: index, Name: name, Err: err}
}

// Rollback 逆序补偿所有已完成的步骤
//
// 单个补偿失败会记录日志并继续，全部失败原因合并返回。
// 补偿过的步骤会被清空，重复调用不会二次补偿。
func (s *Saga) Rollback(ctx context.Context) error {
	var errs []error
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		metrics.SagaCompensationsTotal.Inc()
		if err := step.Compensate(ctx); err != nil {
			log.WithError(err).WithField("step", step.Name).Error("saga补偿失败，需要人工介入")
			errs = append(errs, fmt.Errorf("补偿[%s]: %w", step.Name, err))
		}
	}
	s.executed = nil
	return errors.Join(errs...)
}
