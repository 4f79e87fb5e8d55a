package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation 会话模型
// 品牌方与创作者之间的一对一会话，可关联某个刊登
type Conversation struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	BrandID     string         `gorm:"type:varchar(36);index;not null" json:"brand_id"`
	CreatorID   string         `gorm:"type:varchar(36);index;not null" json:"creator_id"`
	ListingID   string         `gorm:"type:varchar(36);index;comment:关联刊登，可为空" json:"listing_id,omitempty"`
	LastMessage string         `gorm:"type:text" json:"last_message,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联关系
	Brand    User      `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Creator  User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// Message 消息模型
type Message struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ConversationID string         `gorm:"type:varchar(36);index;not null" json:"conversation_id"`
	SenderID       string         `gorm:"type:varchar(36);index;not null" json:"sender_id"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	IsRead         bool           `gorm:"default:false" json:"is_read"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联关系
	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"conversation,omitempty"`
	Sender       User         `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversations"
}

func (Message) TableName() string {
	return "messages"
}

// BeforeCreate 创建前钩子
func (cv *Conversation) BeforeCreate(tx *gorm.DB) error {
	if cv.ID == "" {
		cv.ID = generateUUID()
	}
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateUUID()
	}
	return nil
}

// AfterCreate 创建后钩子 - 更新会话最后消息与时间
func (m *Message) AfterCreate(tx *gorm.DB) error {
	return tx.Model(&Conversation{}).Where("id = ?", m.ConversationID).Updates(map[string]interface{}{
		"last_message": m.Content,
		"updated_at":   time.Now(),
	}).Error
}
