package services

import (
	"errors"
	"time"

	"github.com/xinyucaoo/influenceBay-sub000/config"
	"github.com/xinyucaoo/influenceBay-sub000/models"

	"gorm.io/gorm"
)

// CampaignService 推广活动服务
// 品牌方发布活动，创作者投递申请；申请的接受/拒绝规则与报价一致（仅 pending 可决定）
type CampaignService struct{}

// NewCampaignService 创建推广活动服务实例
func NewCampaignService() *CampaignService {
	return &CampaignService{}
}

// CreateCampaignInput 创建活动入参
type CreateCampaignInput struct {
	Title    string
	Brief    string
	Budget   float64
	Deadline *time.Time
}

// CreateCampaign 品牌方创建活动
func (s *CampaignService) CreateCampaign(brandID, role string, in CreateCampaignInput) (*models.Campaign, error) {
	if role != models.RoleBrand {
		return nil, ErrWrongRole
	}
	if in.Budget < 0 {
		return nil, ErrNegativeAmount
	}

	campaign := &models.Campaign{
		BrandID:  brandID,
		Title:    in.Title,
		Brief:    in.Brief,
		Budget:   in.Budget,
		Deadline: in.Deadline,
		Status:   models.CampaignStatusActive,
	}
	if err := config.DB.Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

// GetCampaign 查询活动详情
func (s *CampaignService) GetCampaign(campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := config.DB.Preload("Brand").First(&campaign, "id = ?", campaignID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// ListCampaigns 分页查询活动列表
func (s *CampaignService) ListCampaigns(status string, page, limit int) ([]models.Campaign, int64, error) {
	query := config.DB.Model(&models.Campaign{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var campaigns []models.Campaign
	err := query.
		Preload("Brand").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&campaigns).Error
	if err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// CloseCampaign 品牌方关闭活动，不再接受新申请
func (s *CampaignService) CloseCampaign(campaignID, brandID string) (*models.Campaign, error) {
	campaign, err := s.GetCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.BrandID != brandID {
		return nil, ErrNotOwner
	}
	if campaign.Status != models.CampaignStatusActive {
		return nil, ErrInvalidState
	}

	if err := config.DB.Model(campaign).Update("status", models.CampaignStatusClosed).Error; err != nil {
		return nil, err
	}
	campaign.Status = models.CampaignStatusClosed
	return campaign, nil
}

// ApplyInput 投递申请入参
type ApplyInput struct {
	Message      string
	ProposedRate float64
}

// Apply 创作者向活动投递申请
// 同一活动同一创作者最多一个 pending 申请
func (s *CampaignService) Apply(campaignID, creatorID, role string, in ApplyInput) (*models.Application, error) {
	if role != models.RoleCreator {
		return nil, ErrWrongRole
	}
	if in.ProposedRate < 0 {
		return nil, ErrNegativeAmount
	}

	campaign, err := s.GetCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignStatusActive {
		return nil, ErrInvalidState
	}

	var existing models.Application
	err = config.DB.Where("campaign_id = ? AND creator_id = ? AND status = ?",
		campaignID, creatorID, models.ApplicationStatusPending).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicatePending
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	application := &models.Application{
		CampaignID:   campaignID,
		CreatorID:    creatorID,
		Message:      in.Message,
		ProposedRate: in.ProposedRate,
		Status:       models.ApplicationStatusPending,
	}
	if err := config.DB.Create(application).Error; err != nil {
		return nil, err
	}
	return application, nil
}

// ListApplications 查询活动下的申请
// 品牌方可见全部；创作者只能看到自己的申请
func (s *CampaignService) ListApplications(campaignID, requesterID string) ([]models.Application, error) {
	campaign, err := s.GetCampaign(campaignID)
	if err != nil {
		return nil, err
	}

	query := config.DB.Preload("Creator").Where("campaign_id = ?", campaignID)
	if campaign.BrandID != requesterID {
		query = query.Where("creator_id = ?", requesterID)
	}

	var applications []models.Application
	if err := query.Order("created_at DESC").Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

// DecideApplication 品牌方接受或拒绝一个 pending 申请
func (s *CampaignService) DecideApplication(campaignID, brandID, applicationID, decision string) (*models.Application, error) {
	if decision != models.ApplicationStatusAccepted && decision != models.ApplicationStatusRejected {
		return nil, ErrInvalidDecision
	}

	campaign, err := s.GetCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.BrandID != brandID {
		return nil, ErrNotOwner
	}

	var application models.Application
	err = config.DB.First(&application, "id = ?", applicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && application.CampaignID != campaignID) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	if application.Status != models.ApplicationStatusPending {
		return nil, ErrInvalidState
	}

	if err := config.DB.Model(&application).Update("status", decision).Error; err != nil {
		return nil, err
	}
	application.Status = decision
	return &application, nil
}
