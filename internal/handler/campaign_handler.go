package handler

import (
	"net/http"

	"github.com/MihkelJ/crowd-fund-yapp/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultCampaignLimit     = 10
	defaultContributionLimit = 50
)

type CampaignHandler struct {
	campaignLogic     *logic.CampaignLogic
	contributionLogic *logic.ContributionLogic
}

func NewCampaignHandler(db *gorm.DB) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic:     logic.NewCampaignLogic(db),
		contributionLogic: logic.NewContributionLogic(db),
	}
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if !bindJSON(c, &req) {
		return
	}

	campaign, err := req.toModel()
	if err != nil {
		HandleError(c, err)
		return
	}

	// 调用logic层创建活动
	if err := h.campaignLogic.CreateCampaign(c.Request.Context(), campaign); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, newCampaignResponse(campaign))
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	limit, offset := parsePagination(c, defaultCampaignLimit)

	// 调用logic层获取活动列表
	campaigns, total, err := h.campaignLogic.ListCampaigns(c.Request.Context(), limit, offset)
	if err != nil {
		HandleError(c, err)
		return
	}

	items := make([]CampaignWithStatsResponse, 0, len(campaigns))
	for i := range campaigns {
		items = append(items, newCampaignWithStatsResponse(&campaigns[i]))
	}

	c.JSON(http.StatusOK, GetCampaignsResponse{
		Campaigns: items,
		Meta:      Meta{Total: total, Limit: limit, Offset: offset},
	})
}

// GetCampaign 获取单个活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	// 调用logic层获取活动详情
	campaign, err := h.campaignLogic.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCampaignWithStatsResponse(campaign))
}

// GetCampaignContributions 获取活动的贡献记录
func (h *CampaignHandler) GetCampaignContributions(c *gin.Context) {
	limit, offset := parsePagination(c, defaultContributionLimit)

	contributions, total, err := h.contributionLogic.ListCampaignContributions(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		HandleError(c, err)
		return
	}

	items := make([]ContributionResponse, 0, len(contributions))
	for i := range contributions {
		items = append(items, newContributionResponse(&contributions[i]))
	}

	c.JSON(http.StatusOK, GetContributionsResponse{
		Contributions: items,
		Meta:          Meta{Total: total, Limit: limit, Offset: offset},
	})
}
