package scheduler

import (
	"fmt"

	"github.com/MihkelJ/crowd-fund-yapp/internal/config"
	"github.com/MihkelJ/crowd-fund-yapp/internal/logger"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Job 定时任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	config    config.SchedulerConfig
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, cfg config.SchedulerConfig) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Manager{
		scheduler: s,
		db:        db,
		config:    cfg,
	}, nil
}

// Start 注册所有任务并启动调度器
func Start(db *gorm.DB, cfg config.SchedulerConfig) (*Manager, error) {
	manager, err := NewManager(db, cfg)
	if err != nil {
		return nil, err
	}

	// 注册所有任务
	if err := manager.RegisterJobs(); err != nil {
		_ = manager.scheduler.Shutdown()
		return nil, err
	}

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started with %d jobs", len(manager.scheduler.Jobs()))
	return manager, nil
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() error {
	// 统计间隔为 0 时不启动统计刷新任务
	if m.config.StatsInterval <= 0 {
		logger.Info("Campaign stats refresher disabled")
		return nil
	}
	return m.Register(NewCampaignStatsJob(m.db, m.config))
}

// Register 以单例模式注册任务，上一次未结束时跳过本次
func (m *Manager) Register(job Job) error {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", job.GetName(), err)
	}
	return nil
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
