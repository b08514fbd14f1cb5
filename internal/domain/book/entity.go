package book

import (
	"strings"
	"time"
)

// Book 图书实体(聚合根)
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. Stock只在创建时赋初值,之后只能通过库存预占/释放/补货修改
// 3. 其余字段是展示用的描述信息,与下单逻辑无关
type Book struct {
	ID            string
	Title         string
	Author        string
	Price         int64 // 价格(分)
	Stock         int   // 库存数量,任何时刻>=0
	Genre         string
	Publisher     string
	Language      string
	CoverURL      string
	Description   string
	PublishedDate *time.Time
	CategoryID    string // 可为空
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate 校验图书的完整性(创建和部分更新后都会调用)
func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrBlankTitle
	}
	if strings.TrimSpace(b.Author) == "" {
		return ErrBlankAuthor
	}
	if b.Price <= 0 || b.Price > MaxPrice {
		return ErrInvalidPrice
	}
	if b.Stock < 0 || b.Stock > MaxStock {
		return ErrInvalidStock
	}
	return nil
}

// MaxPrice 单价上限(分)
const MaxPrice int64 = 99_999_999

// MaxStock 单本图书库存上限
// 与MaxPrice相乘不超过int64,订单行小计不会溢出
const MaxStock = 100_000_000
