package controllers

import (
	"strconv"
	"time"

	"github.com/xinyucaoo/influenceBay-sub000/services"
	"github.com/xinyucaoo/influenceBay-sub000/utils"
	"github.com/xinyucaoo/influenceBay-sub000/websocket"

	"github.com/gin-gonic/gin"
)

// CampaignController 推广活动控制器
type CampaignController struct {
	svc *services.CampaignService
}

// NewCampaignController 创建推广活动控制器实例
func NewCampaignController() *CampaignController {
	return &CampaignController{
		svc: services.NewCampaignService(),
	}
}

// CreateCampaignRequest 创建活动请求结构
type CreateCampaignRequest struct {
	Title    string     `json:"title" binding:"required,max=200"`
	Brief    string     `json:"brief" binding:"max=5000"`
	Budget   float64    `json:"budget" binding:"required,gte=0"`
	Deadline *time.Time `json:"deadline"`
}

// ApplyRequest 投递申请请求结构
type ApplyRequest struct {
	Message      string  `json:"message" binding:"max=500"`
	ProposedRate float64 `json:"proposed_rate" binding:"gte=0"`
}

// DecideApplicationRequest 决定申请请求结构
type DecideApplicationRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// GetCampaigns 获取活动列表
// @Summary 获取活动列表
// @Tags campaigns
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param status query string false "状态筛选"
// @Success 200 {object} utils.PageResponse
// @Router /api/campaigns [get]
func (cc *CampaignController) GetCampaigns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	campaigns, total, err := cc.svc.ListCampaigns(c.Query("status"), page, limit)
	if err != nil {
		utils.InternalError(c, "Failed to get campaigns")
		return
	}

	utils.Paginate(c, campaigns, total, page, limit)
}

// GetCampaign 获取活动详情
// @Summary 获取活动详情
// @Tags campaigns
// @Produce json
// @Param id path string true "活动ID"
// @Success 200 {object} models.Campaign
// @Router /api/campaigns/{id} [get]
func (cc *CampaignController) GetCampaign(c *gin.Context) {
	campaign, err := cc.svc.GetCampaign(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, campaign)
}

// CreateCampaign 创建活动
// @Summary 创建活动
// @Description 品牌方发布新的推广活动
// @Tags campaigns
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateCampaignRequest true "活动信息"
// @Success 201 {object} models.Campaign
// @Router /api/campaigns [post]
func (cc *CampaignController) CreateCampaign(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	campaign, err := cc.svc.CreateCampaign(userID, role, services.CreateCampaignInput{
		Title:    req.Title,
		Brief:    req.Brief,
		Budget:   req.Budget,
		Deadline: req.Deadline,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, campaign)
}

// CloseCampaign 关闭活动
// @Summary 关闭活动
// @Tags campaigns
// @Produce json
// @Security Bearer
// @Param id path string true "活动ID"
// @Success 200 {object} models.Campaign
// @Router /api/campaigns/{id}/close [put]
func (cc *CampaignController) CloseCampaign(c *gin.Context) {
	userID := c.GetString("user_id")

	campaign, err := cc.svc.CloseCampaign(c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, campaign)
}

// Apply 投递申请
// @Summary 投递申请
// @Description 创作者向活动投递合作申请
// @Tags campaigns
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "活动ID"
// @Param request body ApplyRequest true "申请信息"
// @Success 201 {object} models.Application
// @Router /api/campaigns/{id}/applications [post]
func (cc *CampaignController) Apply(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")
	campaignID := c.Param("id")

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	application, err := cc.svc.Apply(campaignID, userID, role, services.ApplyInput{
		Message:      req.Message,
		ProposedRate: req.ProposedRate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 通知品牌方收到新申请
	if campaign, cerr := cc.svc.GetCampaign(campaignID); cerr == nil {
		websocket.Notify(campaign.BrandID, websocket.EventNewApplication, application)
	}

	utils.Created(c, application)
}

// GetApplications 获取活动下的申请
// @Summary 获取申请列表
// @Description 品牌方可见全部申请；创作者只能看到自己的申请
// @Tags campaigns
// @Produce json
// @Security Bearer
// @Param id path string true "活动ID"
// @Success 200 {array} models.Application
// @Router /api/campaigns/{id}/applications [get]
func (cc *CampaignController) GetApplications(c *gin.Context) {
	userID := c.GetString("user_id")

	applications, err := cc.svc.ListApplications(c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, gin.H{"applications": applications})
}

// DecideApplication 决定申请
// @Summary 决定申请
// @Description 品牌方接受或拒绝一个pending申请
// @Tags campaigns
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "活动ID"
// @Param applicationId path string true "申请ID"
// @Param request body DecideApplicationRequest true "决定"
// @Success 200 {object} models.Application
// @Router /api/campaigns/{id}/applications/{applicationId} [put]
func (cc *CampaignController) DecideApplication(c *gin.Context) {
	userID := c.GetString("user_id")

	var req DecideApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	application, err := cc.svc.DecideApplication(c.Param("id"), userID, c.Param("applicationId"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 通知创作者决定结果
	websocket.Notify(application.CreatorID, websocket.EventOfferDecided, application)

	utils.Success(c, application)
}
