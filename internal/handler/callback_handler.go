package handler

import (
	"net/http"

	"github.com/MihkelJ/crowd-fund-yapp/internal/logic"
	"github.com/gin-gonic/gin"
)

// CallbackHandler 支付回调，按交易哈希对账
type CallbackHandler struct {
	reconcileLogic *logic.ReconcileLogic
}

func NewCallbackHandler(reconcileLogic *logic.ReconcileLogic) *CallbackHandler {
	return &CallbackHandler{reconcileLogic: reconcileLogic}
}

// Callback 对账并返回更新后的活动
func (h *CallbackHandler) Callback(c *gin.Context) {
	var req CallbackRequest
	// 请求体为空或格式错误时按缺少 txHash 处理
	_ = c.ShouldBindJSON(&req)

	// 调用logic层对账
	result, err := h.reconcileLogic.Reconcile(c.Request.Context(), req.TxHash)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCampaignResponse(result.Campaign))
}
