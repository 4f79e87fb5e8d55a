package models

import (
	"time"

	"gorm.io/gorm"
)

// 报价状态常量
const (
	OfferStatusPending  = "pending"  // 等待刊登方决定
	OfferStatusAccepted = "accepted" // 被接受（刊登随之成交）
	OfferStatusRejected = "rejected" // 被拒绝
	OfferStatusOutbid   = "outbid"   // 被更高的竞价超过
)

// Offer 报价模型（竞价刊登中等同于出价 Bid）
// 同一刊登同一回应方最多只能有一个 pending 报价
type Offer struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ListingID   string         `gorm:"type:varchar(36);index;not null" json:"listing_id"`
	ResponderID string         `gorm:"type:varchar(36);index;not null" json:"responder_id"`
	Amount      float64        `gorm:"type:decimal(10,2);not null" json:"amount"`
	Message     string         `gorm:"type:varchar(500);comment:附言" json:"message,omitempty"`
	Status      string         `gorm:"type:varchar(20);default:pending;comment:pending,accepted,rejected,outbid" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联关系
	Listing   Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	Responder User    `gorm:"foreignKey:ResponderID" json:"responder,omitempty"`
}

// TableName 指定表名
func (Offer) TableName() string {
	return "offers"
}

// BeforeCreate 创建前钩子
func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = generateUUID()
	}
	return nil
}

// IsPending 是否仍在等待决定
func (o *Offer) IsPending() bool {
	return o.Status == OfferStatusPending
}

// IsTerminal accepted/rejected/outbid 均为终态，不可再变更
func (o *Offer) IsTerminal() bool {
	return o.Status == OfferStatusAccepted || o.Status == OfferStatusRejected || o.Status == OfferStatusOutbid
}
