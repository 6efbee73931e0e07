package ethereum

import (
	"context"
	"fmt"
	"time"

	"github.com/MihkelJ/crowd-fund-yapp/internal/config"
	"github.com/MihkelJ/crowd-fund-yapp/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// 支持的 EVM 链类型
var supportedChainTypes = map[string]bool{
	"ethereum": true,
	"polygon":  true,
	"base":     true,
	"arbitrum": true,
	"optimism": true,
	"bsc":      true,
}

// Client 只读链客户端，用于校验支付交易回执
type Client struct {
	client  *ethclient.Client
	chainId uint64
}

// Init 连接 RPC 节点并确认连接可用
func Init(cfg config.ChainConfig) (*Client, error) {
	if cfg.RpcUrl == "" {
		return nil, fmt.Errorf("no RPC URL configured")
	}
	if !supportedChainTypes[cfg.ChainType] {
		return nil, fmt.Errorf("unsupported chain type %s", cfg.ChainType)
	}

	logger.Info("Creating %s client connection", cfg.ChainType)
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	chainId, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("client connection test failed (%s): %w", cfg.ChainType, err)
	}

	logger.Info("Connected to %s, chain id %s", cfg.ChainType, chainId.String())
	return &Client{client: client, chainId: chainId.Uint64()}, nil
}

// TransactionReceipt 获取交易回执，交易不存在时返回 ethereum.NotFound
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.client.TransactionReceipt(ctx, txHash)
}

// BlockNumber 获取最新区块号
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

// ChainId 连接的链ID
func (c *Client) ChainId() uint64 {
	return c.chainId
}

// Close 关闭连接
func (c *Client) Close() {
	c.client.Close()
}
