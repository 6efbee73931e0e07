package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MihkelJ/crowd-fund-yapp/internal/logger"
	"github.com/MihkelJ/crowd-fund-yapp/internal/metrics"
	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"github.com/MihkelJ/crowd-fund-yapp/internal/oracle"
	"github.com/MihkelJ/crowd-fund-yapp/internal/repository"
	"gorm.io/gorm"
)

// errDuplicatePayment 交易已被并发请求入账，对外仍表现为 ErrCampaignOrTierInvalid
var errDuplicatePayment = errors.New("payment already reconciled")

// ReconcileResult 对账成功后的结果
type ReconcileResult struct {
	// Campaign 重新加载的活动（含档位）
	Campaign     *model.CampaignModel
	Contribution *model.ContributionModel
}

// ReconcileLogic 链上支付对账：根据交易哈希查询预言机，匹配活动和档位，恰好入账一次
type ReconcileLogic struct {
	campaigns     *repository.CampaignRepository
	contributions *repository.ContributionRepository
	oracle        oracle.Client
	timeout       time.Duration
}

// NewReconcileLogic 创建对账逻辑，timeout 限制单次预言机查询
func NewReconcileLogic(db *gorm.DB, oracleClient oracle.Client, timeout time.Duration) *ReconcileLogic {
	return &ReconcileLogic{
		campaigns:     repository.NewCampaignRepository(db),
		contributions: repository.NewContributionRepository(db),
		oracle:        oracleClient,
		timeout:       timeout,
	}
}

// Reconcile 对一笔交易进行对账。
// 任何错误路径都不会写库；ErrTransientOracleFailure 可以用同一哈希重试
func (l *ReconcileLogic) Reconcile(ctx context.Context, txHash string) (*ReconcileResult, error) {
	result, err := l.reconcile(ctx, strings.TrimSpace(txHash))
	metrics.ReconciliationsTotal.WithLabelValues(outcomeOf(err)).Inc()
	return result, err
}

func (l *ReconcileLogic) reconcile(ctx context.Context, txHash string) (*ReconcileResult, error) {
	if txHash == "" {
		return nil, ErrMissingInput
	}

	payment, err := l.lookupPayment(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		logger.Info("Payment %s not found by oracle", txHash)
		return nil, ErrPaymentNotFound
	}

	// 收款地址、memo 档位、未入账三个条件在一次查询中完成
	campaign, err := l.campaigns.FindReconcilable(ctx, payment.ReceiverAddress, payment.Memo, txHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("No campaign accepts payment %s (receiver %s, memo %s)", txHash, payment.ReceiverAddress, payment.Memo)
			return nil, ErrCampaignOrTierInvalid
		}
		return nil, fmt.Errorf("查找对账活动失败: %w", err)
	}

	tier := campaign.FindTier(payment.Memo)
	if tier == nil {
		return nil, ErrTierInvalid
	}

	// 允许多付，不允许少付
	if payment.InvoiceAmount.LessThan(tier.Amount) {
		logger.Info("Payment %s amount %s below tier %s amount %s", txHash, payment.InvoiceAmount.String(), tier.Id, tier.Amount.String())
		return nil, ErrAmountTooLow
	}

	tierId := tier.Id
	hash := txHash
	contribution := &model.ContributionModel{
		CampaignId:         campaign.Id,
		TierId:             &tierId,
		Amount:             payment.InvoiceAmount,
		ContributorAddress: payment.SenderAddress,
		TransactionHash:    &hash,
	}
	if err := l.contributions.Create(ctx, contribution); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发请求已经入账了同一笔交易
			logger.Info("Payment %s already reconciled by a concurrent request", txHash)
			return nil, fmt.Errorf("%w: %w", ErrCampaignOrTierInvalid, errDuplicatePayment)
		}
		return nil, fmt.Errorf("写入贡献记录失败: %w", err)
	}
	metrics.ContributionsTotal.WithLabelValues("reconciled").Inc()

	logger.Info("Reconciled payment %s: %s from %s to campaign %s tier %s",
		txHash, contribution.Amount.String(), contribution.ContributorAddress, campaign.Id, tierId)

	updated, err := l.campaigns.Get(ctx, campaign.Id, false)
	if err != nil {
		return nil, fmt.Errorf("重新加载活动失败: %w", err)
	}

	return &ReconcileResult{Campaign: updated, Contribution: contribution}, nil
}

// lookupPayment 带超时查询预言机
func (l *ReconcileLogic) lookupPayment(ctx context.Context, txHash string) (*model.PaymentFact, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	payment, err := l.oracle.GetPayment(ctx, txHash)

	resultLabel := "found"
	switch {
	case err != nil:
		resultLabel = "error"
	case payment == nil:
		resultLabel = "not_found"
	}
	metrics.OracleLookupDuration.WithLabelValues(resultLabel).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, oracle.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("Payment oracle unavailable for %s: %v", txHash, err)
			return nil, fmt.Errorf("%w: %w", ErrTransientOracleFailure, err)
		}
		return nil, fmt.Errorf("查询支付预言机失败: %w", err)
	}
	return payment, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrMissingInput):
		return metrics.OutcomeMissingInput
	case errors.Is(err, ErrPaymentNotFound):
		return metrics.OutcomePaymentNotFound
	case errors.Is(err, errDuplicatePayment):
		return metrics.OutcomeDuplicate
	case errors.Is(err, ErrCampaignOrTierInvalid):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrTierInvalid):
		return metrics.OutcomeTierInvalid
	case errors.Is(err, ErrAmountTooLow):
		return metrics.OutcomeAmountTooLow
	case errors.Is(err, ErrTransientOracleFailure):
		return metrics.OutcomeOracleFailure
	default:
		return metrics.OutcomeInternal
	}
}
