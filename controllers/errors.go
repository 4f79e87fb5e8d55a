package controllers

import (
	"errors"

	"github.com/xinyucaoo/influenceBay-sub000/models"
	"github.com/xinyucaoo/influenceBay-sub000/services"
	"github.com/xinyucaoo/influenceBay-sub000/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError 将服务层错误映射为HTTP响应
func respondServiceError(c *gin.Context, err error) {
	// 策略拒绝：业务规则校验失败，附带具体原因
	if policyErr, ok := services.AsPolicyError(err); ok {
		utils.BadRequest(c, policyErr.Error())
		return
	}

	switch {
	case errors.Is(err, services.ErrListingNotFound),
		errors.Is(err, services.ErrOfferNotFound),
		errors.Is(err, services.ErrCampaignNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrConversationNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrWrongRole),
		errors.Is(err, services.ErrNotParticipant):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrDuplicatePending),
		errors.Is(err, services.ErrTooMuchContention),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken):
		utils.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidDecision),
		errors.Is(err, services.ErrNegativeAmount),
		errors.Is(err, services.ErrMessageTooLong),
		errors.Is(err, services.ErrSelfOffer),
		errors.Is(err, services.ErrSameParticipant),
		errors.Is(err, models.ErrInvalidPricingMode),
		errors.Is(err, models.ErrInvalidOwnerRole),
		errors.Is(err, models.ErrFixedPriceRequired),
		errors.Is(err, models.ErrStartingBidRequired),
		errors.Is(err, models.ErrAuctionEndRequired),
		errors.Is(err, models.ErrConflictingPriceMode):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrLoginBlocked):
		utils.Forbidden(c, err.Error())
	default:
		utils.InternalError(c, "")
	}
}
