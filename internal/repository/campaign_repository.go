package repository

import (
	"context"
	"fmt"

	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"gorm.io/gorm"
)

// CampaignRepository 众筹活动存储
type CampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository 创建众筹活动存储
func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// tierOrder 档位按金额从低到高展示
func tierOrder(db *gorm.DB) *gorm.DB {
	return db.Order("amount ASC, created_at ASC")
}

// CreateWithTiers 在同一个事务中创建活动和全部档位
func (r *CampaignRepository) CreateWithTiers(ctx context.Context, campaign *model.CampaignModel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tiers := campaign.Tiers
		campaign.Tiers = nil

		if err := tx.Omit("Tiers", "Contributions").Create(campaign).Error; err != nil {
			campaign.Tiers = tiers
			return fmt.Errorf("create campaign: %w", err)
		}

		for i := range tiers {
			tiers[i].CampaignId = campaign.Id
			if err := tx.Create(&tiers[i]).Error; err != nil {
				campaign.Tiers = tiers
				return fmt.Errorf("create tier %d: %w", i, err)
			}
		}

		campaign.Tiers = tiers
		return nil
	})
}

// List 分页获取活动列表，按创建时间倒序，附带档位和贡献记录
func (r *CampaignRepository) List(ctx context.Context, limit, offset int) ([]model.CampaignModel, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.CampaignModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	var campaigns []model.CampaignModel
	err := r.db.WithContext(ctx).
		Preload("Tiers", tierOrder).
		Preload("Contributions").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&campaigns).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}

	return campaigns, total, nil
}

// Get 获取单个活动，未找到时返回 gorm.ErrRecordNotFound
func (r *CampaignRepository) Get(ctx context.Context, id string, withContributions bool) (*model.CampaignModel, error) {
	query := r.db.WithContext(ctx).Preload("Tiers", tierOrder)
	if withContributions {
		query = query.Preload("Contributions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})
	}

	var campaign model.CampaignModel
	if err := query.Where("id = ?", id).First(&campaign).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Exists 活动是否存在
func (r *CampaignRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.CampaignModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindReconcilable 查找可以入账这笔支付的活动：
// 收款地址是活动创建者、活动包含 memo 指定的档位、且这笔交易尚未入账。
// 未找到时返回 gorm.ErrRecordNotFound
func (r *CampaignRepository) FindReconcilable(ctx context.Context, receiverAddress, tierId, txHash string) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	err := r.db.WithContext(ctx).
		Preload("Tiers", tierOrder).
		Where("creator_address = ?", receiverAddress).
		Where("EXISTS (SELECT 1 FROM tier WHERE tier.campaign_id = campaign.id AND tier.id = ?)", tierId).
		Where("NOT EXISTS (SELECT 1 FROM contribution WHERE contribution.campaign_id = campaign.id AND contribution.transaction_hash = ?)", txHash).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// FindInBatches 分批遍历全部活动（含档位和贡献记录）
func (r *CampaignRepository) FindInBatches(ctx context.Context, batchSize int, fn func(campaigns []model.CampaignModel) error) error {
	var batch []model.CampaignModel
	result := r.db.WithContext(ctx).
		Preload("Tiers", tierOrder).
		Preload("Contributions").
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	return result.Error
}
