package mysql

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// database.driver选择方言：mysql（默认）或postgres，仓储代码与方言无关
func NewDB(cfg *config.Config) (*gorm.DB, func(), error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.Database.DSN())
	default:
		dialector = mysql.Open(cfg.Database.DSN())
	}

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true, // 唯一键冲突统一转换为gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.WithField("driver", cfg.Database.Driver).Info("数据库连接成功")

	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			sqlDB.Close()
			return nil, nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			log.WithError(err).Warn("关闭数据库连接失败")
		}
	}
	return db, cleanup, nil
}

// AutoMigrate 建表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&CategoryModel{},
		&BookModel{},
		&OrderModel{},
		&OrderItemModel{},
	)
}

// =========================================
// GORM模型（与领域实体分离）
// =========================================

type UserModel struct {
	ID        string         `gorm:"primaryKey;size:36"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:16;not null;default:CUSTOMER;comment:角色"`
	CreatedAt time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

func (UserModel) TableName() string {
	return "users"
}

type CategoryModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"size:100;not null;comment:分类名"`
	Description string    `gorm:"size:500;comment:描述"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

func (CategoryModel) TableName() string {
	return "categories"
}

type BookModel struct {
	ID            string         `gorm:"primaryKey;size:36"`
	Title         string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author        string         `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Price         int64          `gorm:"index:idx_list;not null;comment:价格(分)"`
	Stock         int            `gorm:"not null;default:0;comment:库存数量"`
	Genre         string         `gorm:"index;size:50;comment:类型"`
	Publisher     string         `gorm:"size:100;comment:出版社"`
	Language      string         `gorm:"size:30;comment:语言"`
	CoverURL      string         `gorm:"size:500;comment:封面图片URL"`
	Description   string         `gorm:"type:text;comment:图书描述"`
	PublishedDate *time.Time     `gorm:"comment:出版日期"`
	CategoryID    string         `gorm:"index;size:36;comment:分类ID"`
	CreatedAt     time.Time      `gorm:"index:idx_list;comment:创建时间"`
	UpdatedAt     time.Time      `gorm:"comment:更新时间"`
	DeletedAt     gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (BookModel) TableName() string {
	return "books"
}

type OrderModel struct {
	ID          string           `gorm:"primaryKey;size:36"`
	UserID      string           `gorm:"index;size:36;not null;comment:下单用户ID"`
	TotalAmount int64            `gorm:"not null;comment:订单总金额(分)"`
	Status      string           `gorm:"index;size:16;not null;comment:订单状态"`
	Items       []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt   time.Time        `gorm:"comment:更新时间"`
}

func (OrderModel) TableName() string {
	return "orders"
}

type OrderItemModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"index;size:36;not null;comment:订单ID"`
	Seq       int    `gorm:"not null;comment:行号(提交顺序)"`
	BookID    string `gorm:"size:36;not null;comment:图书ID"`
	Title     string `gorm:"size:200;not null;comment:下单时书名"`
	UnitPrice int64  `gorm:"not null;comment:下单时单价(分)"`
	Quantity  int    `gorm:"not null;comment:购买数量"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}
