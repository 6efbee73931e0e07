package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MihkelJ/crowd-fund-yapp/internal/logger"
	"github.com/MihkelJ/crowd-fund-yapp/internal/metrics"
	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"github.com/MihkelJ/crowd-fund-yapp/internal/repository"
	"gorm.io/gorm"
)

// CampaignWithStats 活动及其实时统计
type CampaignWithStats struct {
	Campaign *model.CampaignModel
	Stats    Stats
}

// CampaignLogic 众筹活动业务逻辑
type CampaignLogic struct {
	campaigns *repository.CampaignRepository
}

// NewCampaignLogic 创建众筹活动业务逻辑
func NewCampaignLogic(db *gorm.DB) *CampaignLogic {
	return &CampaignLogic{campaigns: repository.NewCampaignRepository(db)}
}

// CreateCampaign 创建活动及其档位，全部成功或全部失败
func (l *CampaignLogic) CreateCampaign(ctx context.Context, campaign *model.CampaignModel) error {
	// 验证活动数据
	if err := validateCampaign(campaign); err != nil {
		return err
	}

	if campaign.Emoji == "" {
		campaign.Emoji = model.DefaultCampaignEmoji
	}

	if err := l.campaigns.CreateWithTiers(ctx, campaign); err != nil {
		return fmt.Errorf("创建活动失败: %w", err)
	}

	metrics.CampaignsCreatedTotal.Inc()
	logger.Info("Campaign %s created by %s with %d tiers", campaign.Id, campaign.CreatorAddress, len(campaign.Tiers))
	return nil
}

// ListCampaigns 分页获取活动列表并计算统计
func (l *CampaignLogic) ListCampaigns(ctx context.Context, limit, offset int) ([]CampaignWithStats, int64, error) {
	campaigns, total, err := l.campaigns.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("获取活动列表失败: %w", err)
	}

	result := make([]CampaignWithStats, len(campaigns))
	for i := range campaigns {
		result[i] = CampaignWithStats{
			Campaign: &campaigns[i],
			Stats:    Aggregate(&campaigns[i], campaigns[i].Contributions),
		}
	}
	return result, total, nil
}

// GetCampaign 获取活动详情并计算统计
func (l *CampaignLogic) GetCampaign(ctx context.Context, id string) (*CampaignWithStats, error) {
	campaign, err := l.campaigns.Get(ctx, id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取活动详情失败: %w", err)
	}

	return &CampaignWithStats{
		Campaign: campaign,
		Stats:    Aggregate(campaign, campaign.Contributions),
	}, nil
}

// Tagline 列表页使用的简短描述
func Tagline(description string) string {
	const max = 100
	if utf8.RuneCountInString(description) <= max {
		return description
	}
	runes := []rune(description)
	return string(runes[:max]) + "..."
}

// validateCampaign 验证活动数据
func validateCampaign(campaign *model.CampaignModel) error {
	verr := NewValidationError()

	if strings.TrimSpace(campaign.Title) == "" {
		verr.Add("title", "Title is required")
	}
	if strings.TrimSpace(campaign.Description) == "" {
		verr.Add("description", "Description is required")
	}
	if !campaign.Goal.IsPositive() {
		verr.Add("goal", "Goal must be a positive number")
	}
	if strings.TrimSpace(campaign.CreatorAddress) == "" {
		verr.Add("creatorAddress", "Creator address is required")
	}

	for i, tier := range campaign.Tiers {
		field := fmt.Sprintf("tiers[%d]", i)
		if strings.TrimSpace(tier.Title) == "" {
			verr.Add(field+".title", "Title is required")
		}
		if strings.TrimSpace(tier.Description) == "" {
			verr.Add(field+".description", "Description is required")
		}
		if !tier.Amount.IsPositive() {
			verr.Add(field+".amount", "Amount must be a positive number")
		}
		if strings.TrimSpace(tier.Emoji) == "" {
			verr.Add(field+".emoji", "Emoji is required")
		}
		if strings.TrimSpace(tier.Perk) == "" {
			verr.Add(field+".perk", "Perk is required")
		}
	}

	return verr.OrNil()
}
