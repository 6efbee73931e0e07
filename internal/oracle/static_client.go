package oracle

import (
	"context"
	"fmt"
	"sync"

	"github.com/MihkelJ/crowd-fund-yapp/internal/config"
	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"github.com/shopspring/decimal"
)

// StaticClient 内存中的预言机，用于本地开发和测试
type StaticClient struct {
	mu       sync.RWMutex
	payments map[string]model.PaymentFact
	err      error
}

// NewStaticClient 创建内存预言机
func NewStaticClient(facts ...model.PaymentFact) *StaticClient {
	c := &StaticClient{payments: make(map[string]model.PaymentFact)}
	for _, fact := range facts {
		c.Put(fact)
	}
	return c
}

// NewStaticClientFromConfig 用配置中的支付数据创建内存预言机
func NewStaticClientFromConfig(payments []config.StaticPayment) (*StaticClient, error) {
	c := NewStaticClient()
	for _, p := range payments {
		amount, err := decimal.NewFromString(p.InvoiceAmount)
		if err != nil {
			return nil, fmt.Errorf("static payment %s: invalid invoice amount %q: %w", p.TxHash, p.InvoiceAmount, err)
		}
		c.Put(model.PaymentFact{
			TxHash:          p.TxHash,
			SenderAddress:   p.SenderAddress,
			ReceiverAddress: p.ReceiverAddress,
			InvoiceAmount:   amount,
			Memo:            p.Memo,
		})
	}
	return c, nil
}

// Put 新增或覆盖一条支付
func (c *StaticClient) Put(fact model.PaymentFact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payments[fact.TxHash] = fact
}

// FailWith 之后的查询都返回 err，传 nil 恢复
func (c *StaticClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// GetPayment 实现 Client 接口
func (c *StaticClient) GetPayment(ctx context.Context, txHash string) (*model.PaymentFact, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	fact, ok := c.payments[txHash]
	if !ok {
		return nil, nil
	}
	return &fact, nil
}
