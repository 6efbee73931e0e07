package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MihkelJ/crowd-fund-yapp/internal/config"
	"github.com/MihkelJ/crowd-fund-yapp/internal/logger"
	"github.com/MihkelJ/crowd-fund-yapp/internal/logic"
	"github.com/MihkelJ/crowd-fund-yapp/internal/metrics"
	"github.com/MihkelJ/crowd-fund-yapp/internal/model"
	"github.com/MihkelJ/crowd-fund-yapp/internal/repository"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

const statsBatchSize = 100

// CampaignStatsJob 定期计算所有活动的统计并发布为 prometheus 指标。
// 只读，不写任何数据
type CampaignStatsJob struct {
	campaigns *repository.CampaignRepository
	config    config.SchedulerConfig
}

// NewCampaignStatsJob 创建活动统计刷新任务
func NewCampaignStatsJob(db *gorm.DB, cfg config.SchedulerConfig) *CampaignStatsJob {
	return &CampaignStatsJob{
		campaigns: repository.NewCampaignRepository(db),
		config:    cfg,
	}
}

// GetName 获取任务名称
func (j *CampaignStatsJob) GetName() string {
	return "campaign_stats_refresher"
}

// GetSchedule 获取调度配置
func (j *CampaignStatsJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.StatsInterval) * time.Second)
}

// Execute 执行任务
func (j *CampaignStatsJob) Execute() {
	start := time.Now()
	defer func() {
		metrics.StatsRefreshDuration.Observe(time.Since(start).Seconds())
	}()

	refreshed, err := j.Refresh(context.Background())
	if err != nil {
		logger.Error("Campaign stats refresh failed: %v", err)
		return
	}
	logger.Debug("Campaign stats refreshed for %d campaigns in %s", refreshed, time.Since(start))
}

// Refresh 分批读取活动，用协程池计算统计并更新指标，返回处理的活动数
func (j *CampaignStatsJob) Refresh(ctx context.Context) (int, error) {
	workers := j.config.Workers
	if workers <= 0 {
		workers = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, err
	}
	defer pool.Release()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		count int
	)

	err = j.campaigns.FindInBatches(ctx, statsBatchSize, func(batch []model.CampaignModel) error {
		for i := range batch {
			// batch 在下一批读取时会被覆盖，先复制
			campaign := batch[i]
			wg.Add(1)
			if err := pool.Submit(func() {
				defer wg.Done()
				publishStats(&campaign)
				mu.Lock()
				count++
				mu.Unlock()
			}); err != nil {
				wg.Done()
				logger.Error("Failed to submit stats task for campaign %s: %v", campaign.Id, err)
			}
		}
		// 等待本批完成后再读取下一批
		wg.Wait()
		return nil
	})
	wg.Wait()

	return count, err
}

func publishStats(campaign *model.CampaignModel) {
	stats := logic.Aggregate(campaign, campaign.Contributions)

	raised, _ := stats.Raised.Float64()
	percentage, _ := stats.PercentageRaised.Float64()

	metrics.CampaignRaised.WithLabelValues(campaign.Id).Set(raised)
	metrics.CampaignPercentageRaised.WithLabelValues(campaign.Id).Set(percentage)
	metrics.CampaignBackers.WithLabelValues(campaign.Id).Set(float64(stats.Backers))
}
