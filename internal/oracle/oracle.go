// Package oracle 查询外部支付预言机：给定交易哈希，返回链上支付信息。
package oracle

import (
	"context"
	"errors"

	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
)

// ErrUnavailable 预言机暂时不可用（网络错误、超时、服务端错误、交易未确认），调用方可以用同一个哈希重试
var ErrUnavailable = errors.New("payment oracle unavailable")

// Client 支付预言机
type Client interface {
	// GetPayment 查询交易对应的支付信息，预言机没有记录时返回 (nil, nil)
	GetPayment(ctx context.Context, txHash string) (*model.PaymentFact, error)
}
