package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/MihkelJ/crowd-fund-yapp/internal/logger"
	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// ReceiptSource 链上回执查询，*ethereum.Client 实现该接口
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// ChainVerifiedClient 在预言机结果之上再校验链上回执：
// 支付须发生在所连接的链上，交易必须成功执行并达到指定确认数
type ChainVerifiedClient struct {
	next          Client
	chain         ReceiptSource
	chainId       uint64
	confirmations uint64
}

// NewChainVerifiedClient 创建带链上校验的预言机，chainId 为所连接节点的链ID
func NewChainVerifiedClient(next Client, chain ReceiptSource, chainId uint64, confirmations uint64) *ChainVerifiedClient {
	return &ChainVerifiedClient{
		next:          next,
		chain:         chain,
		chainId:       chainId,
		confirmations: confirmations,
	}
}

// GetPayment 实现 Client 接口
func (c *ChainVerifiedClient) GetPayment(ctx context.Context, txHash string) (*model.PaymentFact, error) {
	fact, err := c.next.GetPayment(ctx, txHash)
	if err != nil || fact == nil {
		return fact, err
	}

	// 其他链上的同名哈希不能用本链回执证明；预言机未给出链ID时不拦截
	if fact.ChainId != 0 && (fact.ChainId < 0 || uint64(fact.ChainId) != c.chainId) {
		logger.Warn("Payment %s is on chain %d, expected %d, ignoring oracle record", txHash, fact.ChainId, c.chainId)
		return nil, nil
	}

	if !isHexHash(txHash) {
		logger.Warn("Payment %s is not an EVM transaction hash, skipping", txHash)
		return nil, nil
	}

	receipt, err := c.chain.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			// 预言机有记录但链上还查不到，按未确认处理
			return nil, fmt.Errorf("%w: receipt for %s not found yet", ErrUnavailable, txHash)
		}
		return nil, fmt.Errorf("%w: get receipt: %w", ErrUnavailable, err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		logger.Warn("Payment %s reverted on chain, ignoring oracle record", txHash)
		return nil, nil
	}

	if c.confirmations > 0 && receipt.BlockNumber != nil {
		latest, err := c.chain.BlockNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: get block number: %w", ErrUnavailable, err)
		}
		if latest+1 < receipt.BlockNumber.Uint64()+c.confirmations {
			return nil, fmt.Errorf("%w: payment %s has not reached %d confirmations", ErrUnavailable, txHash, c.confirmations)
		}
	}

	return fact, nil
}

func isHexHash(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == common.HashLength
}
