package controllers

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/xinyucaoo/influenceBay-sub000/config"
	"github.com/xinyucaoo/influenceBay-sub000/models"
	"github.com/xinyucaoo/influenceBay-sub000/services"
	"github.com/xinyucaoo/influenceBay-sub000/stores"
	"github.com/xinyucaoo/influenceBay-sub000/utils"

	"github.com/gin-gonic/gin"
)

var cacheCtx = context.Background()

// ListingController 刊登控制器
type ListingController struct {
	svc          *services.ListingService
	listingStore *stores.ListingStore
}

// NewListingController 创建刊登控制器实例
func NewListingController() *ListingController {
	listingStore := stores.NewListingStore(config.DB)
	offerStore := stores.NewOfferStore(config.DB)
	return &ListingController{
		svc:          services.NewListingService(listingStore, offerStore),
		listingStore: listingStore,
	}
}

// CreateListingRequest 创建刊登请求结构
type CreateListingRequest struct {
	Title         string     `json:"title" binding:"required,max=200"`
	Description   string     `json:"description" binding:"max=5000"`
	PricingMode   string     `json:"pricing_mode" binding:"required,oneof=fixed auction"`
	FixedPrice    *float64   `json:"fixed_price" binding:"omitempty,gte=0"`
	StartingBid   *float64   `json:"starting_bid" binding:"omitempty,gte=0"`
	ReservePrice  *float64   `json:"reserve_price" binding:"omitempty,gte=0"`
	AuctionEndsAt *time.Time `json:"auction_ends_at"`
}

// UpdateListingStatusRequest 更新刊登状态请求结构
// 仅支持主动关闭；成交（sold）只能通过接受报价产生
type UpdateListingStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=closed"`
}

// GetListings 获取刊登列表
// @Summary 获取刊登列表
// @Description 分页获取刊登列表，可按状态/发布方角色/定价模式筛选
// @Tags listings
// @Accept json
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param status query string false "状态筛选"
// @Param owner_role query string false "发布方角色筛选"
// @Param pricing_mode query string false "定价模式筛选"
// @Success 200 {object} utils.PageResponse
// @Router /api/listings [get]
func (lc *ListingController) GetListings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	listings, total, err := lc.listingStore.List(c.Request.Context(), stores.ListFilter{
		Status:      c.Query("status"),
		OwnerRole:   c.Query("owner_role"),
		PricingMode: c.Query("pricing_mode"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		utils.InternalError(c, "Failed to get listings")
		return
	}

	utils.Paginate(c, listings, total, page, limit)
}

// GetListing 获取刊登详情
// @Summary 获取刊登详情
// @Description 根据刊登ID获取详细信息
// @Tags listings
// @Accept json
// @Produce json
// @Param id path string true "刊登ID"
// @Success 200 {object} models.Listing
// @Router /api/listings/{id} [get]
func (lc *ListingController) GetListing(c *gin.Context) {
	listingID := c.Param("id")

	// 先尝试从Redis缓存获取
	cacheKey := "listing:" + listingID
	if config.RedisClient != nil {
		if cached, err := config.RedisClient.Get(cacheCtx, cacheKey).Result(); err == nil {
			var listing models.Listing
			if json.Unmarshal([]byte(cached), &listing) == nil {
				utils.Success(c, listing)
				return
			}
		}
	}

	listing, err := lc.svc.GetListing(c.Request.Context(), listingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 异步缓存到Redis
	if config.RedisClient != nil {
		go func(l models.Listing) {
			data, _ := json.Marshal(l)
			config.RedisClient.Set(cacheCtx, cacheKey, data, time.Minute*10)
		}(*listing)
	}

	utils.Success(c, listing)
}

// CreateListing 创建刊登
// @Summary 创建刊登
// @Description 创建新的赞助刊登（一口价或竞价）
// @Tags listings
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateListingRequest true "刊登信息"
// @Success 201 {object} models.Listing
// @Router /api/listings [post]
func (lc *ListingController) CreateListing(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	listing, err := lc.svc.CreateListing(c.Request.Context(), userID, role, services.CreateListingInput{
		Title:         req.Title,
		Description:   req.Description,
		PricingMode:   req.PricingMode,
		FixedPrice:    req.FixedPrice,
		StartingBid:   req.StartingBid,
		ReservePrice:  req.ReservePrice,
		AuctionEndsAt: req.AuctionEndsAt,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, listing)
}

// UpdateListingStatus 关闭刊登
// @Summary 关闭刊登
// @Description 刊登方主动关闭刊登，停止接受新报价；已有pending报价保持原状
// @Tags listings
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "刊登ID"
// @Param request body UpdateListingStatusRequest true "状态更新信息"
// @Success 200 {object} models.Listing
// @Router /api/listings/{id}/status [put]
func (lc *ListingController) UpdateListingStatus(c *gin.Context) {
	userID := c.GetString("user_id")
	listingID := c.Param("id")

	var req UpdateListingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	listing, err := lc.svc.CloseListing(c.Request.Context(), listingID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	invalidateListingCache(listingID)
	utils.Success(c, listing)
}

// GetMyListings 获取我的刊登列表
// @Summary 获取我的刊登列表
// @Description 获取当前登录用户发布的刊登
// @Tags listings
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {array} models.Listing
// @Router /api/listings/mine [get]
func (lc *ListingController) GetMyListings(c *gin.Context) {
	userID := c.GetString("user_id")

	listings, err := lc.listingStore.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		utils.InternalError(c, "Failed to get my listings")
		return
	}

	utils.Success(c, gin.H{"listings": listings})
}

// invalidateListingCache 删除刊登详情缓存
func invalidateListingCache(listingID string) {
	if config.RedisClient == nil {
		return
	}
	go func() {
		config.RedisClient.Del(cacheCtx, "listing:"+listingID)
	}()
}
