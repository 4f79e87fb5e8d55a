package services

import (
	"errors"
	"fmt"
)

// 业务错误（服务层哨兵错误，控制器映射为对应的HTTP状态码）
var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrOfferNotFound      = errors.New("offer not found")
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrNotOwner           = errors.New("caller does not own this resource")
	ErrWrongRole          = errors.New("caller role is not allowed for this action")
	ErrSelfOffer          = errors.New("cannot submit an offer on your own listing")
	ErrDuplicatePending   = errors.New("a pending offer already exists for this listing")
	ErrInvalidState       = errors.New("resource is not in a state that allows this action")
	ErrNegativeAmount     = errors.New("amount must be non-negative")
	ErrMessageTooLong     = errors.New("message must not exceed 500 characters")
	ErrInvalidDecision    = errors.New("decision must be accepted or rejected")
	ErrTooMuchContention  = errors.New("operation aborted after repeated transaction conflicts")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLoginBlocked       = errors.New("too many failed login attempts, try again later")
)

// 报价被策略拒绝的原因
const (
	RejectListingNotOpen = "listing_not_open" // 刊登非 open 状态
	RejectAuctionEnded   = "auction_ended"    // 竞价已截止
	RejectBelowMinimum   = "below_minimum"    // 金额未达门槛
)

// PolicyError 报价准入策略的拒绝结果
// BelowMinimum 时附带计算出的门槛金额，便于前端提示
type PolicyError struct {
	Reason string
	Floor  float64
}

func (e *PolicyError) Error() string {
	switch e.Reason {
	case RejectListingNotOpen:
		return "listing is not open for offers"
	case RejectAuctionEnded:
		return "auction has already ended"
	case RejectBelowMinimum:
		return fmt.Sprintf("offer amount does not clear the minimum of %.2f", e.Floor)
	default:
		return fmt.Sprintf("offer rejected: %s", e.Reason)
	}
}

// AsPolicyError 判断错误是否为策略拒绝
func AsPolicyError(err error) (*PolicyError, bool) {
	var pe *PolicyError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
