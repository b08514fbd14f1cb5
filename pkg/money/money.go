// Package money 金额换算
//
// 领域内金额统一使用int64"分"存储（1.00元 = 100分），
// 只在接口边界与十进制字符串互相转换。
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount 金额格式不正确
	ErrInvalidAmount = errors.New("金额格式不正确")
	// ErrTooPrecise 金额最多两位小数
	ErrTooPrecise = errors.New("金额最多保留两位小数")
)

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// Parse 将十进制字符串转换为分，例如"10.5" → 1050
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, ErrTooPrecise
	}
	// IntPart超出int64时会回绕
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// Format 将分格式化为两位小数的字符串，例如3000 → "30.00"
func Format(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
