package stores

import (
	"context"
	"errors"

	"github.com/xinyucaoo/influenceBay-sub000/models"

	"gorm.io/gorm"
)

// OfferStore 报价持久层
type OfferStore struct {
	db *gorm.DB
}

// NewOfferStore 创建报价持久层实例
func NewOfferStore(db *gorm.DB) *OfferStore {
	return &OfferStore{db: db}
}

// Create 持久化新报价
func (s *OfferStore) Create(ctx context.Context, offer *models.Offer) error {
	return dbFromContext(ctx, s.db).Create(offer).Error
}

// GetByID 按ID查询报价，不存在时返回 (nil, nil)
func (s *OfferStore) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	err := dbFromContext(ctx, s.db).First(&offer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListByListing 查询刊登下的全部报价（金额降序）
func (s *OfferStore) ListByListing(ctx context.Context, listingID string) ([]models.Offer, error) {
	var offers []models.Offer
	err := dbFromContext(ctx, s.db).
		Where("listing_id = ?", listingID).
		Order("amount DESC").
		Find(&offers).Error
	return offers, err
}

// ListByListingAndResponder 查询某回应方在刊登下的报价
func (s *OfferStore) ListByListingAndResponder(ctx context.Context, listingID, responderID string) ([]models.Offer, error) {
	var offers []models.Offer
	err := dbFromContext(ctx, s.db).
		Where("listing_id = ? AND responder_id = ?", listingID, responderID).
		Order("amount DESC").
		Find(&offers).Error
	return offers, err
}

// FindPendingByResponder 查询某回应方在刊登下的 pending 报价，不存在时返回 (nil, nil)
func (s *OfferStore) FindPendingByResponder(ctx context.Context, listingID, responderID string) (*models.Offer, error) {
	var offer models.Offer
	err := dbFromContext(ctx, s.db).
		Where("listing_id = ? AND responder_id = ? AND status = ?",
			listingID, responderID, models.OfferStatusPending).
		First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// HighestActive 查询刊登下金额最高的 pending/accepted 报价（即当前领先者）
// 不存在时返回 (nil, nil)；必须在持有刊登行锁的事务内调用，避免并发竞价读到过期值
func (s *OfferStore) HighestActive(ctx context.Context, listingID string) (*models.Offer, error) {
	var offer models.Offer
	err := dbFromContext(ctx, s.db).
		Where("listing_id = ? AND status IN ?",
			listingID, []string{models.OfferStatusPending, models.OfferStatusAccepted}).
		Order("amount DESC").
		First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// UpdateStatus 更新报价状态
func (s *OfferStore) UpdateStatus(ctx context.Context, id, status string) error {
	return dbFromContext(ctx, s.db).
		Model(&models.Offer{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// RejectPendingExcept 将刊登下除指定报价外的所有 pending 报价批量置为 rejected
// 接受某个报价时的级联拒绝
func (s *OfferStore) RejectPendingExcept(ctx context.Context, listingID, exceptOfferID string) error {
	return dbFromContext(ctx, s.db).
		Model(&models.Offer{}).
		Where("listing_id = ? AND id <> ? AND status = ?",
			listingID, exceptOfferID, models.OfferStatusPending).
		Update("status", models.OfferStatusRejected).Error
}
