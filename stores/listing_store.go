package stores

import (
	"context"
	"errors"

	"github.com/xinyucaoo/influenceBay-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingStore 刊登持久层
type ListingStore struct {
	db *gorm.DB
}

// NewListingStore 创建刊登持久层实例
func NewListingStore(db *gorm.DB) *ListingStore {
	return &ListingStore{db: db}
}

// WithTx 在单个事务中执行 fn
func (s *ListingStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, s.db, fn)
}

// Create 持久化新刊登
func (s *ListingStore) Create(ctx context.Context, listing *models.Listing) error {
	return dbFromContext(ctx, s.db).Create(listing).Error
}

// GetByID 按ID查询刊登，不存在时返回 (nil, nil)
func (s *ListingStore) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	err := dbFromContext(ctx, s.db).First(&listing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetForUpdate 按ID加行锁查询刊登（SELECT ... FOR UPDATE）
// 报价提交与决定均以此锁序列化同一刊登上的并发操作
func (s *ListingStore) GetForUpdate(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	err := dbFromContext(ctx, s.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&listing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateStatus 更新刊登状态
func (s *ListingStore) UpdateStatus(ctx context.Context, id, status string) error {
	return dbFromContext(ctx, s.db).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListFilter 列表查询条件
type ListFilter struct {
	Status      string
	OwnerRole   string
	PricingMode string
	Page        int
	Limit       int
}

// List 分页查询刊登列表
func (s *ListingStore) List(ctx context.Context, filter ListFilter) ([]models.Listing, int64, error) {
	query := dbFromContext(ctx, s.db).Model(&models.Listing{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OwnerRole != "" {
		query = query.Where("owner_role = ?", filter.OwnerRole)
	}
	if filter.PricingMode != "" {
		query = query.Where("pricing_mode = ?", filter.PricingMode)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.Listing
	err := query.
		Preload("Owner").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// ListByOwner 查询某个用户发布的全部刊登
func (s *ListingStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	var listings []models.Listing
	err := dbFromContext(ctx, s.db).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}
