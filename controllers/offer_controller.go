package controllers

import (
	"time"

	"github.com/xinyucaoo/influenceBay-sub000/config"
	"github.com/xinyucaoo/influenceBay-sub000/services"
	"github.com/xinyucaoo/influenceBay-sub000/stores"
	"github.com/xinyucaoo/influenceBay-sub000/utils"
	"github.com/xinyucaoo/influenceBay-sub000/websocket"

	"github.com/gin-gonic/gin"
)

// OfferController 报价控制器
type OfferController struct {
	svc *services.ListingService
}

// NewOfferController 创建报价控制器实例
func NewOfferController() *OfferController {
	return &OfferController{
		svc: services.NewListingService(
			stores.NewListingStore(config.DB),
			stores.NewOfferStore(config.DB),
		),
	}
}

// CreateOfferRequest 提交报价请求结构
type CreateOfferRequest struct {
	Amount  float64 `json:"amount" binding:"required,gte=0"`
	Message string  `json:"message" binding:"max=500"`
}

// DecideOfferRequest 决定报价请求结构
type DecideOfferRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// CreateOffer 对刊登提交报价
// @Summary 提交报价
// @Description 对开放中的刊登提交报价；竞价刊登必须严格高于当前门槛，一口价达到即可
// @Tags offers
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "刊登ID"
// @Param request body CreateOfferRequest true "报价信息"
// @Success 201 {object} models.Offer
// @Router /api/listings/{id}/offers [post]
func (oc *OfferController) CreateOffer(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")
	listingID := c.Param("id")

	// 限制单用户报价频率
	if !utils.APIRateLimit(c, "offers:"+userID, 30, time.Minute) {
		utils.BadRequest(c, "Too many offers, slow down")
		return
	}

	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	result, err := oc.svc.SubmitOffer(c.Request.Context(), listingID, userID, role, req.Amount, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 实时通知：刊登方收到新报价；前领先者被超越
	listing, lerr := oc.svc.GetListing(c.Request.Context(), listingID)
	if lerr == nil {
		websocket.Notify(listing.OwnerID, websocket.EventNewOffer, result.Offer)
	}
	if result.Outbid != nil {
		websocket.Notify(result.Outbid.ResponderID, websocket.EventOutbid, result.Outbid)
	}

	invalidateListingCache(listingID)
	utils.Created(c, result.Offer)
}

// DecideOffer 接受或拒绝报价
// @Summary 决定报价
// @Description 刊登方接受或拒绝一个pending报价；接受后刊登成交，其余pending报价被级联拒绝
// @Tags offers
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "刊登ID"
// @Param offerId path string true "报价ID"
// @Param request body DecideOfferRequest true "决定"
// @Success 200 {object} models.Offer
// @Router /api/listings/{id}/offers/{offerId} [put]
func (oc *OfferController) DecideOffer(c *gin.Context) {
	userID := c.GetString("user_id")
	listingID := c.Param("id")
	offerID := c.Param("offerId")

	var req DecideOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	offer, err := oc.svc.DecideOffer(c.Request.Context(), listingID, userID, offerID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 通知回应方决定结果
	websocket.Notify(offer.ResponderID, websocket.EventOfferDecided, offer)

	invalidateListingCache(listingID)
	utils.Success(c, offer)
}

// GetOffers 获取刊登下的报价
// @Summary 获取报价列表
// @Description 刊登方可见全部报价；其他用户只能看到自己的报价
// @Tags offers
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "刊登ID"
// @Success 200 {array} models.Offer
// @Router /api/listings/{id}/offers [get]
func (oc *OfferController) GetOffers(c *gin.Context) {
	userID := c.GetString("user_id")
	listingID := c.Param("id")

	offers, err := oc.svc.ListOffers(c.Request.Context(), listingID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, gin.H{"offers": offers})
}
