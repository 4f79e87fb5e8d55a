package services

import (
	"time"

	"github.com/xinyucaoo/influenceBay-sub000/models"
)

// 报价准入策略：纯函数，不做任何 I/O
// 调用方负责在同一事务内取得刊登与当前最高报价，保证判定与落库的原子性

// EvaluateNewOffer 判定新报价是否可被接受
// highest 为刊登下当前金额最高的 pending/accepted 报价，没有时传 nil
// 返回 nil 表示准入；否则返回带具体原因的 *PolicyError
//
// 门槛规则：
//   - 一口价：floor = FixedPrice，amount >= floor 即准入（等于即成交意向，不存在"超过"的语义）
//   - 竞价：floor = max(当前最高报价, StartingBid)，必须严格大于 floor，
//     平局不推进竞价，且会造成领先者歧义，故拒绝
func EvaluateNewOffer(listing *models.Listing, highest *models.Offer, amount float64, now time.Time) *PolicyError {
	if !listing.IsOpen() {
		return &PolicyError{Reason: RejectListingNotOpen}
	}

	if listing.PricingMode == models.PricingAuction &&
		listing.AuctionEndsAt != nil && !listing.AuctionEndsAt.After(now) {
		return &PolicyError{Reason: RejectAuctionEnded}
	}

	switch listing.PricingMode {
	case models.PricingFixed:
		floor := *listing.FixedPrice
		if amount < floor {
			return &PolicyError{Reason: RejectBelowMinimum, Floor: floor}
		}
	case models.PricingAuction:
		floor := *listing.StartingBid
		if highest != nil && highest.Amount > floor {
			floor = highest.Amount
		}
		if amount <= floor {
			return &PolicyError{Reason: RejectBelowMinimum, Floor: floor}
		}
	}

	return nil
}

// AcceptanceMutation 接受报价产生的状态变更集合
// 接受是排他且终局的：目标报价 accepted，其余 pending 级联 rejected，刊登 sold
type AcceptanceMutation struct {
	AcceptOfferID   string
	RejectOfferIDs  []string
	ListingID       string
	ListingToStatus string
}

// ApplyAcceptedOffer 计算接受某个报价后的全部状态变更
// offers 为刊登下的全部报价；这是刊登进入 sold 的唯一路径
func ApplyAcceptedOffer(listing *models.Listing, offers []models.Offer, acceptedOfferID string) AcceptanceMutation {
	mutation := AcceptanceMutation{
		AcceptOfferID:   acceptedOfferID,
		ListingID:       listing.ID,
		ListingToStatus: models.ListingStatusSold,
	}
	for _, offer := range offers {
		if offer.ID != acceptedOfferID && offer.Status == models.OfferStatusPending {
			mutation.RejectOfferIDs = append(mutation.RejectOfferIDs, offer.ID)
		}
	}
	return mutation
}
