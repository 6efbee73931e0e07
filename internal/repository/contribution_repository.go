package repository

import (
	"context"
	"fmt"

	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"gorm.io/gorm"
)

// ContributionRepository 贡献记录存储
type ContributionRepository struct {
	db *gorm.DB
}

// NewContributionRepository 创建贡献记录存储
func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

// Create 写入一条贡献记录。
// 同一活动下重复的交易哈希由唯一索引拦截，返回 gorm.ErrDuplicatedKey
func (r *ContributionRepository) Create(ctx context.Context, contribution *model.ContributionModel) error {
	return r.db.WithContext(ctx).Omit("Tier").Create(contribution).Error
}

// ListByCampaign 分页获取活动的贡献记录，按时间倒序，附带档位简要信息
func (r *ContributionRepository) ListByCampaign(ctx context.Context, campaignId string, limit, offset int) ([]model.ContributionModel, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.ContributionModel{}).
		Where("campaign_id = ?", campaignId).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count contributions: %w", err)
	}

	var contributions []model.ContributionModel
	err := r.db.WithContext(ctx).
		Preload("Tier", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "emoji")
		}).
		Where("campaign_id = ?", campaignId).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&contributions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list contributions: %w", err)
	}

	return contributions, total, nil
}

// CountByTransaction 统计活动下某交易哈希的记录数
func (r *ContributionRepository) CountByTransaction(ctx context.Context, campaignId, txHash string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ContributionModel{}).
		Where("campaign_id = ? AND transaction_hash = ?", campaignId, txHash).
		Count(&count).Error
	return count, err
}
