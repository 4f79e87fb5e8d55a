package models

import (
	"time"

	"gorm.io/gorm"
)

// 活动状态常量
const (
	CampaignStatusActive = "active"
	CampaignStatusClosed = "closed"
)

// 申请状态常量
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

// Campaign 品牌推广活动模型
// 品牌方发布活动，创作者投递申请
type Campaign struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	BrandID   string         `gorm:"type:varchar(36);index;not null" json:"brand_id"`
	Title     string         `gorm:"type:varchar(200);not null" json:"title"`
	Brief     string         `gorm:"type:text;comment:活动简介与要求" json:"brief,omitempty"`
	Budget    float64        `gorm:"type:decimal(10,2);not null" json:"budget"`
	Deadline  *time.Time     `gorm:"comment:截止时间" json:"deadline,omitempty"`
	Status    string         `gorm:"type:varchar(20);default:active;comment:active,closed" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联关系
	Brand        User          `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Applications []Application `gorm:"foreignKey:CampaignID" json:"applications,omitempty"`
}

// Application 创作者对活动的申请模型
// 同一活动同一创作者最多只能有一个 pending 申请
type Application struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	CampaignID   string         `gorm:"type:varchar(36);index;not null" json:"campaign_id"`
	CreatorID    string         `gorm:"type:varchar(36);index;not null" json:"creator_id"`
	Message      string         `gorm:"type:varchar(500);comment:自荐信息" json:"message,omitempty"`
	ProposedRate float64        `gorm:"type:decimal(10,2);comment:期望报酬" json:"proposed_rate"`
	Status       string         `gorm:"type:varchar(20);default:pending;comment:pending,accepted,rejected" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联关系
	Campaign Campaign `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`
	Creator  User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "campaigns"
}

func (Application) TableName() string {
	return "applications"
}

// BeforeCreate 创建前钩子
func (cp *Campaign) BeforeCreate(tx *gorm.DB) error {
	if cp.ID == "" {
		cp.ID = generateUUID()
	}
	return nil
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = generateUUID()
	}
	return nil
}
