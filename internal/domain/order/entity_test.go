package order

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

func TestNewOrder_TotalIsDerived(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	o := NewOrder("o-1", "u-1", []LineItem{
		{BookID: "b1", Title: "A", UnitPrice: 1000, Quantity: 3},
		{BookID: "b2", Title: "B", UnitPrice: 250, Quantity: 2},
	}, now)

	assert.Equal(t, int64(3500), o.TotalAmount)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, now, o.CreatedAt)
	assert.True(t, o.IsOwnedBy("u-1"))
}

func TestSumTotal_Overflow(t *testing.T) {
	total, ok := SumTotal([]LineItem{{UnitPrice: 1000, Quantity: 3}, {UnitPrice: 250, Quantity: 2}})
	assert.True(t, ok)
	assert.Equal(t, int64(3500), total)

	total, ok = SumTotal([]LineItem{{UnitPrice: math.MaxInt64, Quantity: 1}})
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), total)

	_, ok = SumTotal([]LineItem{{UnitPrice: 90_000_000_000_000_000, Quantity: 200}})
	assert.False(t, ok, "单行乘积溢出")

	_, ok = SumTotal([]LineItem{{UnitPrice: math.MaxInt64, Quantity: 1}, {UnitPrice: 1, Quantity: 1}})
	assert.False(t, ok, "累加溢出")
}

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:    {StatusProcessing, StatusCancelled},
		StatusProcessing: {StatusShipped, StatusCancelled},
		StatusShipped:    {StatusDelivered},
	}
	all := []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestOrder_TransitionTo(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	t.Run("合法流转更新UpdatedAt", func(t *testing.T) {
		o := NewOrder("o-1", "u-1", nil, created)
		require.NoError(t, o.TransitionTo(StatusProcessing, later))
		assert.Equal(t, StatusProcessing, o.Status)
		assert.Equal(t, later, o.UpdatedAt)
		assert.Equal(t, created, o.CreatedAt)
	})

	t.Run("不能回到PENDING", func(t *testing.T) {
		o := NewOrder("o-1", "u-1", nil, created)
		err := o.TransitionTo(StatusPending, later)
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		assert.Equal(t, StatusPending, o.Status)

		o.Status = StatusProcessing
		assert.ErrorIs(t, o.TransitionTo(StatusPending, later), ErrInvalidStatusTransition)
	})

	t.Run("终态不能流转", func(t *testing.T) {
		o := NewOrder("o-1", "u-1", nil, created)
		o.Status = StatusDelivered
		assert.True(t, o.Status.IsTerminal())
		assert.ErrorIs(t, o.TransitionTo(StatusCancelled, later), ErrInvalidStatusTransition)
	})
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	_, err = ParseStatus("PAID")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestValidationError_AppError(t *testing.T) {
	err := NewValidationError("lines", "订单行不能为空")
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
	assert.Equal(t, "lines", appErr.Details["field"])
}
