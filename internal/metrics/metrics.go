package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crowdfund"

// 对账结果标签
const (
	OutcomeSuccess         = "success"
	OutcomeMissingInput    = "missing_input"
	OutcomePaymentNotFound = "payment_not_found"
	OutcomeInvalid         = "campaign_or_tier_invalid"
	OutcomeDuplicate       = "duplicate"
	OutcomeTierInvalid     = "tier_invalid"
	OutcomeAmountTooLow    = "amount_too_low"
	OutcomeOracleFailure   = "oracle_unavailable"
	OutcomeInternal        = "internal_error"
)

var (
	// ReconciliationsTotal 对账请求结果计数
	ReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciliations_total",
		Help:      "Payment reconciliations by outcome",
	}, []string{"outcome"})

	// OracleLookupDuration 预言机查询耗时
	OracleLookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "oracle",
		Name:      "lookup_duration_seconds",
		Help:      "Payment oracle lookup latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"result"})

	// ContributionsTotal 写入的贡献记录数，source: reconciled, direct
	ContributionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contributions_total",
		Help:      "Contributions recorded by source",
	}, []string{"source"})

	// CampaignsCreatedTotal 创建的活动数
	CampaignsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "campaigns_created_total",
		Help:      "Campaigns created",
	})

	// CampaignRaised 活动已筹金额，由统计任务定期刷新
	CampaignRaised = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "campaign",
		Name:      "raised",
		Help:      "Amount raised per campaign",
	}, []string{"campaign_id"})

	// CampaignPercentageRaised 活动完成百分比
	CampaignPercentageRaised = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "campaign",
		Name:      "percentage_raised",
		Help:      "Percentage of goal raised per campaign",
	}, []string{"campaign_id"})

	// CampaignBackers 活动去重后的支持者数
	CampaignBackers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "campaign",
		Name:      "backers",
		Help:      "Unique backers per campaign",
	}, []string{"campaign_id"})

	// StatsRefreshDuration 统计任务单次耗时
	StatsRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "stats_refresh_duration_seconds",
		Help:      "Duration of the campaign stats refresh job",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTPRequestDuration HTTP 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
