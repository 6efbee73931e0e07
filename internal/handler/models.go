package handler

import (
	"strings"
	"time"

	"github.com/MihkelJ/crowd-fund-yapp/internal/logic"
	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"github.com/shopspring/decimal"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorBody 错误响应结构
type ErrorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// 分页信息结构
type Meta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// 请求模型

// CreateTierRequest 创建档位请求
type CreateTierRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"gt=0"`
	Emoji       string          `json:"emoji" binding:"required"`
	Perk        string          `json:"perk" binding:"required"`
}

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Title          string              `json:"title" binding:"required"`
	Description    string              `json:"description" binding:"required"`
	Goal           decimal.Decimal     `json:"goal" binding:"gt=0"`
	EndDate        *string             `json:"endDate"`
	CreatorAddress string              `json:"creatorAddress" binding:"required"`
	Emoji          string              `json:"emoji"`
	Tiers          []CreateTierRequest `json:"tiers" binding:"dive"`
}

// toModel 转换为数据模型，endDate 为空串时视为未设置
func (r *CreateCampaignRequest) toModel() (*model.CampaignModel, error) {
	endDate, err := parseEndDate(r.EndDate)
	if err != nil {
		verr := logic.NewValidationError()
		verr.Add("endDate", "must be an RFC 3339 timestamp or YYYY-MM-DD date")
		return nil, verr
	}

	campaign := &model.CampaignModel{
		Title:          r.Title,
		Description:    r.Description,
		Goal:           r.Goal,
		EndDate:        endDate,
		CreatorAddress: r.CreatorAddress,
		Emoji:          r.Emoji,
	}
	for _, t := range r.Tiers {
		campaign.Tiers = append(campaign.Tiers, model.TierModel{
			Title:       t.Title,
			Description: t.Description,
			Amount:      t.Amount,
			Emoji:       t.Emoji,
			Perk:        t.Perk,
		})
	}
	return campaign, nil
}

// endDateLayouts 日期输入框只给出日期部分
var endDateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

func parseEndDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)

	var lastErr error
	for _, layout := range endDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// CreateContributionRequest 直接创建贡献请求
type CreateContributionRequest struct {
	CampaignId         string          `json:"campaignId" binding:"required"`
	TierId             *string         `json:"tierId"`
	Amount             decimal.Decimal `json:"amount" binding:"gt=0"`
	ContributorAddress string          `json:"contributorAddress" binding:"required"`
	Message            *string         `json:"message" binding:"omitempty,max=500"`
	TransactionHash    *string         `json:"transactionHash"`
}

func (r *CreateContributionRequest) toModel() *model.ContributionModel {
	return &model.ContributionModel{
		CampaignId:         r.CampaignId,
		TierId:             r.TierId,
		Amount:             r.Amount,
		ContributorAddress: r.ContributorAddress,
		Message:            r.Message,
		TransactionHash:    r.TransactionHash,
	}
}

// CallbackRequest 支付回调请求
type CallbackRequest struct {
	TxHash string `json:"txHash"`
}

// 响应模型

// TierResponse 档位响应模型
type TierResponse struct {
	Id          string          `json:"id"`
	CampaignId  string          `json:"campaignId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Emoji       string          `json:"emoji"`
	Perk        string          `json:"perk"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CampaignResponse 活动响应模型
type CampaignResponse struct {
	Id             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Goal           decimal.Decimal `json:"goal"`
	Emoji          string          `json:"emoji"`
	CreatorAddress string          `json:"creatorAddress"`
	EndDate        *time.Time      `json:"endDate"`
	CreatedAt      time.Time       `json:"createdAt"`
	Tiers          []TierResponse  `json:"tiers"`
}

// StatsResponse 活动统计
type StatsResponse struct {
	Raised              decimal.Decimal   `json:"raised"`
	PercentageRaised    decimal.Decimal   `json:"percentageRaised"`
	Backers             int               `json:"backers"`
	ContributionsByTier []logic.TierCount `json:"contributionsByTier"`
}

// CampaignWithStatsResponse 活动及统计
type CampaignWithStatsResponse struct {
	CampaignResponse
	Tagline       string                `json:"tagline"`
	Stats         StatsResponse         `json:"stats"`
	Contributions []ContributionSummary `json:"contributions"`
}

// ContributionSummary 活动详情和列表中附带的贡献记录
type ContributionSummary struct {
	Id                 string          `json:"id"`
	Amount             decimal.Decimal `json:"amount"`
	ContributorAddress string          `json:"contributorAddress"`
	TierId             *string         `json:"tierId"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// TierSummary 贡献记录中附带的档位简要信息
type TierSummary struct {
	Id    string `json:"id"`
	Title string `json:"title"`
	Emoji string `json:"emoji"`
}

// ContributionResponse 贡献记录响应模型
type ContributionResponse struct {
	Id                 string          `json:"id"`
	CampaignId         string          `json:"campaignId"`
	TierId             *string         `json:"tierId"`
	Amount             decimal.Decimal `json:"amount"`
	ContributorAddress string          `json:"contributorAddress"`
	TransactionHash    *string         `json:"transactionHash"`
	Message            *string         `json:"message"`
	CreatedAt          time.Time       `json:"createdAt"`
	Tier               *TierSummary    `json:"tier,omitempty"`
}

// GetCampaignsResponse 获取活动列表响应
type GetCampaignsResponse struct {
	Campaigns []CampaignWithStatsResponse `json:"campaigns"`
	Meta      Meta                        `json:"meta"`
}

// GetContributionsResponse 获取贡献记录响应
type GetContributionsResponse struct {
	Contributions []ContributionResponse `json:"contributions"`
	Meta          Meta                   `json:"meta"`
}

func newTierResponse(t *model.TierModel) TierResponse {
	return TierResponse{
		Id:          t.Id,
		CampaignId:  t.CampaignId,
		Title:       t.Title,
		Description: t.Description,
		Amount:      t.Amount,
		Emoji:       t.Emoji,
		Perk:        t.Perk,
		CreatedAt:   t.CreatedAt,
	}
}

func newCampaignResponse(c *model.CampaignModel) CampaignResponse {
	tiers := make([]TierResponse, 0, len(c.Tiers))
	for i := range c.Tiers {
		tiers = append(tiers, newTierResponse(&c.Tiers[i]))
	}
	return CampaignResponse{
		Id:             c.Id,
		Title:          c.Title,
		Description:    c.Description,
		Goal:           c.Goal,
		Emoji:          c.Emoji,
		CreatorAddress: c.CreatorAddress,
		EndDate:        c.EndDate,
		CreatedAt:      c.CreatedAt,
		Tiers:          tiers,
	}
}

func newCampaignWithStatsResponse(c *logic.CampaignWithStats) CampaignWithStatsResponse {
	contributions := make([]ContributionSummary, 0, len(c.Campaign.Contributions))
	for _, contribution := range c.Campaign.Contributions {
		contributions = append(contributions, ContributionSummary{
			Id:                 contribution.Id,
			Amount:             contribution.Amount,
			ContributorAddress: contribution.ContributorAddress,
			TierId:             contribution.TierId,
			CreatedAt:          contribution.CreatedAt,
		})
	}

	return CampaignWithStatsResponse{
		CampaignResponse: newCampaignResponse(c.Campaign),
		Tagline:          logic.Tagline(c.Campaign.Description),
		Stats: StatsResponse{
			Raised:              c.Stats.Raised,
			PercentageRaised:    c.Stats.PercentageRaised.Round(2),
			Backers:             c.Stats.Backers,
			ContributionsByTier: c.Stats.ContributionsByTier,
		},
		Contributions: contributions,
	}
}

func newContributionResponse(c *model.ContributionModel) ContributionResponse {
	resp := ContributionResponse{
		Id:                 c.Id,
		CampaignId:         c.CampaignId,
		TierId:             c.TierId,
		Amount:             c.Amount,
		ContributorAddress: c.ContributorAddress,
		TransactionHash:    c.TransactionHash,
		Message:            c.Message,
		CreatedAt:          c.CreatedAt,
	}
	if c.Tier != nil {
		resp.Tier = &TierSummary{Id: c.Tier.Id, Title: c.Tier.Title, Emoji: c.Tier.Emoji}
	}
	return resp
}
