package services

import (
	"context"
	"time"

	"github.com/xinyucaoo/influenceBay-sub000/models"
	"github.com/xinyucaoo/influenceBay-sub000/stores"
)

// ListingStore 刊登持久层接口（生产实现为 stores.ListingStore）
type ListingStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	GetForUpdate(ctx context.Context, id string) (*models.Listing, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// OfferStore 报价持久层接口（生产实现为 stores.OfferStore）
type OfferStore interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id string) (*models.Offer, error)
	ListByListing(ctx context.Context, listingID string) ([]models.Offer, error)
	ListByListingAndResponder(ctx context.Context, listingID, responderID string) ([]models.Offer, error)
	FindPendingByResponder(ctx context.Context, listingID, responderID string) (*models.Offer, error)
	HighestActive(ctx context.Context, listingID string) (*models.Offer, error)
	UpdateStatus(ctx context.Context, id, status string) error
	RejectPendingExcept(ctx context.Context, listingID, exceptOfferID string) error
}

// ListingService 刊登生命周期服务
// 四个核心操作均在单个事务内执行；事务竞争（死锁/锁等待超时）做有界重试
type ListingService struct {
	listings   ListingStore
	offers     OfferStore
	now        func() time.Time
	maxRetries int
}

const defaultMaxRetries = 3

// NewListingService 创建刊登生命周期服务实例
func NewListingService(listings ListingStore, offers OfferStore, opts ...ListingServiceOption) *ListingService {
	svc := &ListingService{
		listings:   listings,
		offers:     offers,
		now:        time.Now,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ListingServiceOption 服务可选配置
type ListingServiceOption func(*ListingService)

// WithNowFunc 注入时间来源（测试用）
func WithNowFunc(now func() time.Time) ListingServiceOption {
	return func(s *ListingService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxRetries 覆盖事务竞争的最大重试次数
func WithMaxRetries(n int) ListingServiceOption {
	return func(s *ListingService) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// retryTx 执行 fn，事务竞争时重试至多 maxRetries 次，仍失败则返回 ErrTooMuchContention
func (s *ListingService) retryTx(fn func() error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err = fn()
		if err == nil || !stores.IsRetryable(err) {
			return err
		}
	}
	return ErrTooMuchContention
}

// CreateListingInput 创建刊登入参
type CreateListingInput struct {
	Title         string
	Description   string
	PricingMode   string
	FixedPrice    *float64
	StartingBid   *float64
	ReservePrice  *float64
	AuctionEndsAt *time.Time
}

// CreateListing 创建刊登，校验定价模式不变量后以 open 状态落库
func (s *ListingService) CreateListing(ctx context.Context, ownerID, ownerRole string, in CreateListingInput) (*models.Listing, error) {
	listing := &models.Listing{
		OwnerID:       ownerID,
		OwnerRole:     ownerRole,
		Title:         in.Title,
		Description:   in.Description,
		PricingMode:   in.PricingMode,
		FixedPrice:    in.FixedPrice,
		StartingBid:   in.StartingBid,
		ReservePrice:  in.ReservePrice,
		AuctionEndsAt: in.AuctionEndsAt,
		Status:        models.ListingStatusOpen,
	}

	if err := listing.Validate(); err != nil {
		return nil, err
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// SubmitOfferResult 报价提交结果
// Outbid 为本次提交导致出局的前领先报价（仅竞价刊登可能非空）
type SubmitOfferResult struct {
	Offer  *models.Offer
	Outbid *models.Offer
}

// SubmitOffer 对刊登提交报价
// 读最高价、判定准入、淘汰前领先者、落库新报价在同一事务内完成，
// 刊登行持有 FOR UPDATE 锁，并发提交被序列化
func (s *ListingService) SubmitOffer(ctx context.Context, listingID, responderID, responderRole string, amount float64, message string) (*SubmitOfferResult, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	if len([]rune(message)) > 500 {
		return nil, ErrMessageTooLong
	}

	var result *SubmitOfferResult
	err := s.retryTx(func() error {
		result = nil
		return s.listings.WithTx(ctx, func(txCtx context.Context) error {
			listing, err := s.listings.GetForUpdate(txCtx, listingID)
			if err != nil {
				return err
			}
			if listing == nil {
				return ErrListingNotFound
			}
			if listing.OwnerID == responderID {
				return ErrSelfOffer
			}
			if responderRole != models.CounterpartRole(listing.OwnerRole) {
				return ErrWrongRole
			}

			// 同一回应方同一刊登最多一个 pending 报价
			if existing, err := s.offers.FindPendingByResponder(txCtx, listingID, responderID); err != nil {
				return err
			} else if existing != nil {
				return ErrDuplicatePending
			}

			highest, err := s.offers.HighestActive(txCtx, listingID)
			if err != nil {
				return err
			}

			if policyErr := EvaluateNewOffer(listing, highest, amount, s.now()); policyErr != nil {
				return policyErr
			}

			// 竞价刊登：新报价准入后，先淘汰前领先者再落库新报价
			var outbid *models.Offer
			if listing.PricingMode == models.PricingAuction && highest != nil {
				if err := s.offers.UpdateStatus(txCtx, highest.ID, models.OfferStatusOutbid); err != nil {
					return err
				}
				highest.Status = models.OfferStatusOutbid
				outbid = highest
			}

			offer := &models.Offer{
				ListingID:   listingID,
				ResponderID: responderID,
				Amount:      amount,
				Message:     message,
				Status:      models.OfferStatusPending,
			}
			if err := s.offers.Create(txCtx, offer); err != nil {
				return err
			}

			result = &SubmitOfferResult{Offer: offer, Outbid: outbid}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DecideOffer 刊登方接受或拒绝一个 pending 报价
// 接受时的级联（目标 accepted、其余 pending rejected、刊登 sold）在同一事务内完成
func (s *ListingService) DecideOffer(ctx context.Context, listingID, callerID, offerID, decision string) (*models.Offer, error) {
	if decision != models.OfferStatusAccepted && decision != models.OfferStatusRejected {
		return nil, ErrInvalidDecision
	}

	var decided *models.Offer
	err := s.retryTx(func() error {
		decided = nil
		return s.listings.WithTx(ctx, func(txCtx context.Context) error {
			listing, err := s.listings.GetForUpdate(txCtx, listingID)
			if err != nil {
				return err
			}
			if listing == nil {
				return ErrListingNotFound
			}
			if listing.OwnerID != callerID {
				return ErrNotOwner
			}

			offer, err := s.offers.GetByID(txCtx, offerID)
			if err != nil {
				return err
			}
			if offer == nil || offer.ListingID != listingID {
				return ErrOfferNotFound
			}
			if !offer.IsPending() {
				return ErrInvalidState
			}

			if decision == models.OfferStatusRejected {
				if err := s.offers.UpdateStatus(txCtx, offer.ID, models.OfferStatusRejected); err != nil {
					return err
				}
				offer.Status = models.OfferStatusRejected
				decided = offer
				return nil
			}

			// 接受会把刊登推进 sold；closed 不再发生任何转移，
			// 所以关闭后遗留的 pending 报价只能被拒绝，不能被接受
			if !listing.IsOpen() {
				return ErrInvalidState
			}

			// 接受：级联变更由策略层计算，此处按变更集落库
			all, err := s.offers.ListByListing(txCtx, listingID)
			if err != nil {
				return err
			}
			mutation := ApplyAcceptedOffer(listing, all, offer.ID)

			if err := s.offers.UpdateStatus(txCtx, mutation.AcceptOfferID, models.OfferStatusAccepted); err != nil {
				return err
			}
			if len(mutation.RejectOfferIDs) > 0 {
				if err := s.offers.RejectPendingExcept(txCtx, listingID, mutation.AcceptOfferID); err != nil {
					return err
				}
			}
			if err := s.listings.UpdateStatus(txCtx, mutation.ListingID, mutation.ListingToStatus); err != nil {
				return err
			}

			offer.Status = models.OfferStatusAccepted
			decided = offer
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

// CloseListing 刊登方主动关闭 open 状态的刊登
// 既有 pending 报价保持原状：无成交的关闭只是停止接受新报价，不级联拒绝
func (s *ListingService) CloseListing(ctx context.Context, listingID, callerID string) (*models.Listing, error) {
	var closed *models.Listing
	err := s.retryTx(func() error {
		closed = nil
		return s.listings.WithTx(ctx, func(txCtx context.Context) error {
			listing, err := s.listings.GetForUpdate(txCtx, listingID)
			if err != nil {
				return err
			}
			if listing == nil {
				return ErrListingNotFound
			}
			if listing.OwnerID != callerID {
				return ErrNotOwner
			}
			if !listing.IsOpen() {
				return ErrInvalidState
			}

			if err := s.listings.UpdateStatus(txCtx, listingID, models.ListingStatusClosed); err != nil {
				return err
			}
			listing.Status = models.ListingStatusClosed
			closed = listing
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// ListOffers 查询刊登下的报价
// 刊登方可见全部；其他人只能看到自己的报价（非刊登方不可见竞争者的出价）
func (s *ListingService) ListOffers(ctx context.Context, listingID, requesterID string) ([]models.Offer, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	if listing.OwnerID == requesterID {
		return s.offers.ListByListing(ctx, listingID)
	}
	return s.offers.ListByListingAndResponder(ctx, listingID, requesterID)
}

// GetListing 查询刊登详情
func (s *ListingService) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}
