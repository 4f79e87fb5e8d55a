package services

import (
	"errors"

	"github.com/xinyucaoo/influenceBay-sub000/config"
	"github.com/xinyucaoo/influenceBay-sub000/models"

	"gorm.io/gorm"
)

// 会话相关错误
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("caller is not a participant of this conversation")
	ErrSameParticipant      = errors.New("cannot start a conversation with yourself")
)

// ChatService 会话服务
// 品牌方与创作者之间围绕刊登/合作的站内消息
type ChatService struct{}

// NewChatService 创建会话服务实例
func NewChatService() *ChatService {
	return &ChatService{}
}

// participants 按角色归位：返回 (brandID, creatorID)
func participants(a *models.User, b *models.User) (string, string) {
	if a.Role == models.RoleBrand {
		return a.ID, b.ID
	}
	return b.ID, a.ID
}

// OpenConversation 打开（或复用已有的）与对方的会话
func (s *ChatService) OpenConversation(callerID, otherUserID, listingID string) (*models.Conversation, error) {
	if callerID == otherUserID {
		return nil, ErrSameParticipant
	}

	var caller, other models.User
	if err := config.DB.First(&caller, "id = ?", callerID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if err := config.DB.First(&other, "id = ?", otherUserID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if caller.Role == other.Role {
		// 会话只存在于品牌方与创作者之间
		return nil, ErrWrongRole
	}

	brandID, creatorID := participants(&caller, &other)

	// 已有会话直接复用
	var conversation models.Conversation
	err := config.DB.Where("brand_id = ? AND creator_id = ?", brandID, creatorID).
		First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conversation = models.Conversation{
		BrandID:   brandID,
		CreatorID: creatorID,
		ListingID: listingID,
	}
	if err := config.DB.Create(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// getConversationFor 查询会话并校验参与权
func (s *ChatService) getConversationFor(conversationID, userID string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := config.DB.First(&conversation, "id = ?", conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	if conversation.BrandID != userID && conversation.CreatorID != userID {
		return nil, ErrNotParticipant
	}
	return &conversation, nil
}

// GetConversation 查询会话详情（需为参与方）
func (s *ChatService) GetConversation(conversationID, userID string) (*models.Conversation, error) {
	return s.getConversationFor(conversationID, userID)
}

// ListConversations 查询自己参与的全部会话（按最近消息排序）
func (s *ChatService) ListConversations(userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := config.DB.
		Preload("Brand").
		Preload("Creator").
		Where("brand_id = ? OR creator_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

// SendMessage 在会话中发送消息
func (s *ChatService) SendMessage(conversationID, senderID, content string) (*models.Message, error) {
	if _, err := s.getConversationFor(conversationID, senderID); err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := config.DB.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages 分页查询会话消息（时间正序）
func (s *ChatService) ListMessages(conversationID, userID string, page, limit int) ([]models.Message, error) {
	if _, err := s.getConversationFor(conversationID, userID); err != nil {
		return nil, err
	}

	var messages []models.Message
	err := config.DB.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&messages).Error
	return messages, err
}

// MarkAsRead 将会话中对方发来的消息标记为已读
func (s *ChatService) MarkAsRead(conversationID, userID string) error {
	if _, err := s.getConversationFor(conversationID, userID); err != nil {
		return err
	}

	return config.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, userID, false).
		Update("is_read", true).Error
}

// UnreadCount 统计自己全部会话中的未读消息数
func (s *ChatService) UnreadCount(userID string) (int64, error) {
	var count int64
	err := config.DB.Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.brand_id = ? OR conversations.creator_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
