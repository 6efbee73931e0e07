package logic

import (
	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TierCount 单个档位的贡献次数
type TierCount struct {
	TierId    string `json:"tierId"`
	TierTitle string `json:"tierTitle"`
	Count     int    `json:"count"`
}

// Stats 活动统计，每次读取时由贡献记录实时计算
type Stats struct {
	Raised              decimal.Decimal `json:"raised"`
	PercentageRaised    decimal.Decimal `json:"percentageRaised"`
	Backers             int             `json:"backers"`
	ContributionsByTier []TierCount     `json:"contributionsByTier"`
}

// Aggregate 计算活动统计。
// 未关联档位的贡献计入总额和支持者，但不计入任何档位
func Aggregate(campaign *model.CampaignModel, contributions []model.ContributionModel) Stats {
	raised := decimal.Zero
	backers := make(map[string]struct{}, len(contributions))
	byTier := make(map[string]int, len(campaign.Tiers))

	for i := range contributions {
		c := &contributions[i]
		raised = raised.Add(c.Amount)
		backers[c.ContributorAddress] = struct{}{}
		if c.HasTier() {
			byTier[*c.TierId]++
		}
	}

	percentage := decimal.Zero
	if campaign.Goal.IsPositive() {
		percentage = raised.Mul(hundred).Div(campaign.Goal)
	}

	tiers := make([]TierCount, 0, len(campaign.Tiers))
	for _, tier := range campaign.Tiers {
		tiers = append(tiers, TierCount{
			TierId:    tier.Id,
			TierTitle: tier.Title,
			Count:     byTier[tier.Id],
		})
	}

	return Stats{
		Raised:              raised,
		PercentageRaised:    percentage,
		Backers:             len(backers),
		ContributionsByTier: tiers,
	}
}
