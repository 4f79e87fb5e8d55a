package models

import (
	"time"

	"gorm.io/gorm"
)

// 用户角色常量
const (
	RoleBrand   = "brand"   // 品牌方
	RoleCreator = "creator" // 创作者
)

// CounterpartRole 返回对方角色：品牌对创作者，创作者对品牌
func CounterpartRole(role string) string {
	if role == RoleBrand {
		return RoleCreator
	}
	return RoleBrand
}

// User 用户模型（品牌方或创作者的统一账号）
type User struct {
	ID          string         `gorm:"type:varchar(36);primaryKey;comment:用户ID (UUID)" json:"id"`
	Username    string         `gorm:"type:varchar(50);uniqueIndex;not null;comment:用户名" json:"username"`
	Email       string         `gorm:"type:varchar(100);uniqueIndex;not null;comment:邮箱" json:"email"`
	Password    string         `gorm:"type:varchar(255);not null;comment:密码" json:"-"` // 不返回给前端
	Role        string         `gorm:"type:varchar(20);not null;comment:角色: brand=品牌方, creator=创作者" json:"role"`
	DisplayName string         `gorm:"type:varchar(100);comment:展示名称" json:"display_name,omitempty"`
	Avatar      string         `gorm:"type:varchar(255);comment:头像" json:"avatar,omitempty"`
	Bio         string         `gorm:"type:text;comment:个人/品牌简介" json:"bio,omitempty"`
	Platform    string         `gorm:"type:varchar(50);comment:主要平台 (创作者)" json:"platform,omitempty"`
	Followers   int64          `gorm:"default:0;comment:粉丝数 (创作者)" json:"followers"`
	Website     string         `gorm:"type:varchar(255);comment:官网 (品牌方)" json:"website,omitempty"`
	Status      int            `gorm:"default:1;comment:状态: 1=正常, 0=禁用" json:"status"`
	LastLogin   *time.Time     `gorm:"comment:最后登录时间" json:"last_login,omitempty"`
	CreatedAt   time.Time      `gorm:"comment:创建时间" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:删除时间" json:"-"` // 软删除

	// 关联关系
	Listings     []Listing     `gorm:"foreignKey:OwnerID" json:"listings,omitempty"`
	Offers       []Offer       `gorm:"foreignKey:ResponderID" json:"offers,omitempty"`
	Campaigns    []Campaign    `gorm:"foreignKey:BrandID" json:"campaigns,omitempty"`
	Applications []Application `gorm:"foreignKey:CreatorID" json:"applications,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// BeforeCreate 创建前钩子
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}
