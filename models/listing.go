package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// 定价模式常量
const (
	PricingFixed   = "fixed"   // 一口价
	PricingAuction = "auction" // 竞价
)

// 刊登状态常量
const (
	ListingStatusOpen   = "open"   // 开放中，唯一可接受报价的状态
	ListingStatusClosed = "closed" // 已关闭（主动撤下）
	ListingStatusSold   = "sold"   // 已成交（某个报价被接受）
)

// Listing 赞助刊登模型
// 品牌方或创作者均可发布（OwnerRole 区分两个市场方向），对方角色可提交报价
type Listing struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID     string `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	OwnerRole   string `gorm:"type:varchar(20);not null;comment:发布方角色: brand 或 creator" json:"owner_role"`
	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// 定价模式：fixed 填 FixedPrice；auction 填 StartingBid + AuctionEndsAt
	PricingMode   string     `gorm:"type:varchar(20);not null;comment:fixed 或 auction" json:"pricing_mode"`
	FixedPrice    *float64   `gorm:"type:decimal(10,2);comment:一口价" json:"fixed_price,omitempty"`
	StartingBid   *float64   `gorm:"type:decimal(10,2);comment:起拍价" json:"starting_bid,omitempty"`
	ReservePrice  *float64   `gorm:"type:decimal(10,2);comment:保留价（暂存储，不参与判定）" json:"reserve_price,omitempty"`
	AuctionEndsAt *time.Time `gorm:"comment:竞价截止时间" json:"auction_ends_at,omitempty"`

	Status    string         `gorm:"type:varchar(20);default:open;comment:open,closed,sold" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联关系
	Owner  User    `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Offers []Offer `gorm:"foreignKey:ListingID" json:"offers,omitempty"`
}

// TableName 指定表名
func (Listing) TableName() string {
	return "listings"
}

// BeforeCreate 创建前钩子
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

// 刊登字段校验错误
var (
	ErrInvalidPricingMode   = errors.New("pricing_mode must be fixed or auction")
	ErrInvalidOwnerRole     = errors.New("owner_role must be brand or creator")
	ErrFixedPriceRequired   = errors.New("fixed listing requires a non-negative fixed_price")
	ErrStartingBidRequired  = errors.New("auction listing requires a non-negative starting_bid")
	ErrAuctionEndRequired   = errors.New("auction listing requires auction_ends_at")
	ErrConflictingPriceMode = errors.New("fixed and auction pricing fields are mutually exclusive")
)

// Validate 校验定价模式与字段的互斥不变量
// fixed 必须且只能填 FixedPrice；auction 必须填 StartingBid 和 AuctionEndsAt
func (l *Listing) Validate() error {
	if l.OwnerRole != RoleBrand && l.OwnerRole != RoleCreator {
		return ErrInvalidOwnerRole
	}

	switch l.PricingMode {
	case PricingFixed:
		if l.FixedPrice == nil || *l.FixedPrice < 0 {
			return ErrFixedPriceRequired
		}
		if l.StartingBid != nil || l.ReservePrice != nil || l.AuctionEndsAt != nil {
			return ErrConflictingPriceMode
		}
	case PricingAuction:
		if l.StartingBid == nil || *l.StartingBid < 0 {
			return ErrStartingBidRequired
		}
		if l.AuctionEndsAt == nil {
			return ErrAuctionEndRequired
		}
		if l.FixedPrice != nil {
			return ErrConflictingPriceMode
		}
	default:
		return ErrInvalidPricingMode
	}
	return nil
}

// IsOpen 是否处于可接受报价的状态
func (l *Listing) IsOpen() bool {
	return l.Status == ListingStatusOpen
}
