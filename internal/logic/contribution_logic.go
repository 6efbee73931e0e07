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

// MaxMessageLength 贡献留言的最大长度
const MaxMessageLength = 500

// ContributionLogic 贡献记录业务逻辑
type ContributionLogic struct {
	campaigns     *repository.CampaignRepository
	contributions *repository.ContributionRepository
}

// NewContributionLogic 创建贡献记录业务逻辑
func NewContributionLogic(db *gorm.DB) *ContributionLogic {
	return &ContributionLogic{
		campaigns:     repository.NewCampaignRepository(db),
		contributions: repository.NewContributionRepository(db),
	}
}

// CreateContribution 直接创建贡献记录（不经过预言机对账）
func (l *ContributionLogic) CreateContribution(ctx context.Context, contribution *model.ContributionModel) error {
	// 验证贡献数据
	if err := validateContribution(contribution); err != nil {
		return err
	}
	normalizeOptional(&contribution.TierId)
	normalizeOptional(&contribution.TransactionHash)
	normalizeOptional(&contribution.Message)

	// 检查活动是否存在
	campaign, err := l.campaigns.Get(ctx, contribution.CampaignId, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("获取活动失败: %w", err)
	}

	// 档位必须属于该活动
	if contribution.HasTier() && campaign.FindTier(*contribution.TierId) == nil {
		return ErrTierNotInCampaign
	}

	if err := l.contributions.Create(ctx, contribution); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("创建贡献记录失败: %w", err)
	}

	metrics.ContributionsTotal.WithLabelValues("direct").Inc()
	logger.Info("Contribution %s of %s recorded for campaign %s", contribution.Id, contribution.Amount.String(), campaign.Id)
	return nil
}

// ListCampaignContributions 分页获取活动的贡献记录
func (l *ContributionLogic) ListCampaignContributions(ctx context.Context, campaignId string, limit, offset int) ([]model.ContributionModel, int64, error) {
	exists, err := l.campaigns.Exists(ctx, campaignId)
	if err != nil {
		return nil, 0, fmt.Errorf("检查活动失败: %w", err)
	}
	if !exists {
		return nil, 0, ErrNotFound
	}

	contributions, total, err := l.contributions.ListByCampaign(ctx, campaignId, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("获取贡献记录失败: %w", err)
	}
	return contributions, total, nil
}

// validateContribution 验证贡献数据
func validateContribution(contribution *model.ContributionModel) error {
	verr := NewValidationError()

	if strings.TrimSpace(contribution.CampaignId) == "" {
		verr.Add("campaignId", "Campaign ID is required")
	}
	if !contribution.Amount.IsPositive() {
		verr.Add("amount", "Amount must be positive")
	}
	if strings.TrimSpace(contribution.ContributorAddress) == "" {
		verr.Add("contributorAddress", "Contributor address is required")
	}
	if contribution.Message != nil && utf8.RuneCountInString(*contribution.Message) > MaxMessageLength {
		verr.Add("message", "Message is too long")
	}

	return verr.OrNil()
}

// normalizeOptional 空字符串视为未设置
func normalizeOptional(s **string) {
	if *s != nil && strings.TrimSpace(**s) == "" {
		*s = nil
	}
}
