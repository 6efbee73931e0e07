package handler

import (
	"errors"
	"net/http"

	"github.com/MihkelJ/crowd-fund-yapp/internal/logger"
	"github.com/MihkelJ/crowd-fund-yapp/internal/logic"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, code, message string, details map[string]string) {
	c.JSON(statusCode, ErrorBody{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// errorMapping 业务错误到 HTTP 响应的映射
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{logic.ErrMissingInput, http.StatusBadRequest, "missing_input", "No txHash provided"},
	{logic.ErrPaymentNotFound, http.StatusNotFound, "payment_not_found", "Payment not found"},
	{logic.ErrCampaignOrTierInvalid, http.StatusNotFound, "campaign_or_tier_invalid", "Campaign not found or not valid"},
	{logic.ErrTierInvalid, http.StatusNotFound, "tier_invalid", "Tier not found or not valid"},
	{logic.ErrAmountTooLow, http.StatusBadRequest, "amount_too_low", "Payment amount is below the tier amount"},
	{logic.ErrValidationFailed, http.StatusBadRequest, "validation_failed", "Validation failed"},
	{logic.ErrNotFound, http.StatusNotFound, "not_found", "Campaign not found"},
	{logic.ErrTierNotInCampaign, http.StatusBadRequest, "tier_not_in_campaign", "Tier does not belong to this campaign"},
	{logic.ErrDuplicateTransaction, http.StatusBadRequest, "duplicate_transaction", "Transaction already recorded for this campaign"},
	{logic.ErrTransientOracleFailure, http.StatusServiceUnavailable, "oracle_unavailable", "Payment lookup temporarily unavailable"},
}

// HandleError 将 logic 层错误写成响应，未知错误只记录日志不向调用方暴露细节
func HandleError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		var details map[string]string
		var verr *logic.ValidationError
		if errors.As(err, &verr) {
			details = verr.Fields
		}
		ErrorResponse(c, m.status, m.code, m.message, details)
		return
	}

	logger.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	ErrorResponse(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
}
