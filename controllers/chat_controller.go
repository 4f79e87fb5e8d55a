package controllers

import (
	"strconv"

	"github.com/xinyucaoo/influenceBay-sub000/services"
	"github.com/xinyucaoo/influenceBay-sub000/utils"
	"github.com/xinyucaoo/influenceBay-sub000/websocket"

	"github.com/gin-gonic/gin"
)

// ChatController 会话控制器
type ChatController struct {
	svc *services.ChatService
}

// NewChatController 创建会话控制器实例
func NewChatController() *ChatController {
	return &ChatController{
		svc: services.NewChatService(),
	}
}

// OpenConversationRequest 打开会话请求结构
type OpenConversationRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ListingID string `json:"listing_id"`
}

// SendMessageRequest 发送消息请求结构
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// GetConversations 获取会话列表
// @Summary 获取会话列表
// @Tags chats
// @Produce json
// @Security Bearer
// @Success 200 {array} models.Conversation
// @Router /api/chats [get]
func (cc *ChatController) GetConversations(c *gin.Context) {
	userID := c.GetString("user_id")

	conversations, err := cc.svc.ListConversations(userID)
	if err != nil {
		utils.InternalError(c, "Failed to get conversations")
		return
	}
	utils.Success(c, gin.H{"conversations": conversations})
}

// OpenConversation 打开会话
// @Summary 打开会话
// @Description 打开（或复用已有的）与对方的会话
// @Tags chats
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body OpenConversationRequest true "对方用户"
// @Success 201 {object} models.Conversation
// @Router /api/chats [post]
func (cc *ChatController) OpenConversation(c *gin.Context) {
	userID := c.GetString("user_id")

	var req OpenConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	conversation, err := cc.svc.OpenConversation(userID, req.UserID, req.ListingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, conversation)
}

// GetMessages 获取会话消息
// @Summary 获取会话消息
// @Tags chats
// @Produce json
// @Security Bearer
// @Param id path string true "会话ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(50)
// @Success 200 {array} models.Message
// @Router /api/chats/{id}/messages [get]
func (cc *ChatController) GetMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	messages, err := cc.svc.ListMessages(c.Param("id"), userID, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, gin.H{"messages": messages})
}

// SendMessage 发送消息
// @Summary 发送消息
// @Tags chats
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "会话ID"
// @Param request body SendMessageRequest true "消息内容"
// @Success 201 {object} models.Message
// @Router /api/chats/{id}/messages [post]
func (cc *ChatController) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	message, err := cc.svc.SendMessage(c.Param("id"), userID, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 实时推送给会话另一方
	if conversation, cerr := cc.svc.GetConversation(message.ConversationID, userID); cerr == nil {
		recipient := conversation.BrandID
		if recipient == userID {
			recipient = conversation.CreatorID
		}
		websocket.Notify(recipient, websocket.EventNewMessage, message)
	}

	utils.Created(c, message)
}

// MarkAsRead 标记已读
// @Summary 标记会话消息为已读
// @Tags chats
// @Produce json
// @Security Bearer
// @Param id path string true "会话ID"
// @Success 200 {object} utils.Response
// @Router /api/chats/{id}/read [put]
func (cc *ChatController) MarkAsRead(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := cc.svc.MarkAsRead(c.Param("id"), userID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, nil)
}

// GetUnreadCount 获取未读消息数
// @Summary 获取未读消息总数
// @Tags chats
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response
// @Router /api/chats/unread [get]
func (cc *ChatController) GetUnreadCount(c *gin.Context) {
	userID := c.GetString("user_id")

	count, err := cc.svc.UnreadCount(userID)
	if err != nil {
		utils.InternalError(c, "Failed to get unread count")
		return
	}
	utils.Success(c, gin.H{"unread": count})
}
