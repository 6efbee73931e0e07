package handler

import (
	"net/http"

	"github.com/MihkelJ/crowd-fund-yapp/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ContributionHandler struct {
	contributionLogic *logic.ContributionLogic
}

func NewContributionHandler(db *gorm.DB) *ContributionHandler {
	return &ContributionHandler{
		contributionLogic: logic.NewContributionLogic(db),
	}
}

// CreateContribution 直接创建贡献记录
func (h *ContributionHandler) CreateContribution(c *gin.Context) {
	var req CreateContributionRequest
	if !bindJSON(c, &req) {
		return
	}

	// 调用logic层创建贡献记录
	contribution := req.toModel()
	if err := h.contributionLogic.CreateContribution(c.Request.Context(), contribution); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, newContributionResponse(contribution))
}
