package logic

import (
	"errors"
	"sort"
	"strings"
)

// 业务错误，由 handler 层映射为 HTTP 状态码
var (
	ErrMissingInput           = errors.New("missing input")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrCampaignOrTierInvalid  = errors.New("campaign not found or not valid")
	ErrTierInvalid            = errors.New("tier not found or not valid")
	ErrAmountTooLow           = errors.New("payment amount is below the tier amount")
	ErrValidationFailed       = errors.New("validation failed")
	ErrNotFound               = errors.New("campaign not found")
	ErrTierNotInCampaign      = errors.New("tier does not belong to this campaign")
	ErrDuplicateTransaction   = errors.New("transaction already recorded for this campaign")
	ErrTransientOracleFailure = errors.New("payment oracle temporarily unavailable")
)

// ValidationError 字段级校验错误，errors.Is(err, ErrValidationFailed) 为真
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError 创建空的校验错误
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add 记录字段错误，同一字段只保留第一条
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// OrNil 没有字段错误时返回 nil
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
