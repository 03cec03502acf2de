package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cv_optimizer/config"
	"cv_optimizer/logger"
	"cv_optimizer/repository"
)

// 将秒数转换为时间间隔
func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// 验证小时和分钟是否有效
func validateHourMinute(hour, minute int) (int, int) {
	if hour < 0 || hour > 23 {
		logger.Warn("无效的小时值", "hour", hour, "default", 3)
		hour = 3
	}
	if minute < 0 || minute > 59 {
		logger.Warn("无效的分钟值", "minute", minute, "default", 0)
		minute = 0
	}
	return hour, minute
}

// 计算下一个指定时间点
func getNextTimePoint(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if next.Before(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// 任务类型
type TaskType int

const (
	TaskCleanup TaskType = iota
)

// 任务状态
type TaskStatus struct {
	LastRun     time.Time
	NextRun     time.Time
	IsRunning   bool
	Description string
}

// 任务调度器
type Scheduler struct {
	cfg   *config.Config
	tasks map[TaskType]*TaskStatus
	mutex sync.Mutex
}

// 创建新的调度器
func NewScheduler(cfg *config.Config) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		tasks: make(map[TaskType]*TaskStatus),
	}
}

// 启动调度器
func Start(cfg *config.Config) {
	scheduler := NewScheduler(cfg)

	// 初始化任务
	scheduler.initTasks()

	// 启动主循环
	go scheduler.run()

	checkInterval := cfg.Scheduler.CheckIntervalSec
	if checkInterval <= 0 {
		checkInterval = 60 // 默认值
	}
	logger.Info("调度器已启动", "check_interval_sec", checkInterval)
}

// 初始化任务
func (s *Scheduler) initTasks() {
	now := time.Now()

	// 过期数据清理任务 - 根据debug模式决定运行频率
	if s.cfg.Debug.Enabled {
		// Debug模式：按配置的秒数间隔清理一次
		freqSeconds := s.cfg.Debug.CleanupFreqSec
		if freqSeconds <= 0 {
			freqSeconds = 600
		}
		cleanupInterval := secondsToDuration(freqSeconds)

		s.tasks[TaskCleanup] = &TaskStatus{
			LastRun:     now.Add(-cleanupInterval),
			NextRun:     now.Add(cleanupInterval),
			IsRunning:   false,
			Description: fmt.Sprintf("过期数据清理 (Debug模式: 每%d秒)", freqSeconds),
		}
		logger.Info("Debug模式已启用", "frequency_seconds", freqSeconds, "workflow", "清理过期上传文件和数据库记录")
	} else {
		// 正常模式：每天在指定时间点运行
		hour, minute := validateHourMinute(s.cfg.Scheduler.CleanupHour, s.cfg.Scheduler.CleanupMin)
		nextRun := getNextTimePoint(now, hour, minute)

		s.tasks[TaskCleanup] = &TaskStatus{
			LastRun:     nextRun.Add(-24 * time.Hour),
			NextRun:     nextRun,
			IsRunning:   false,
			Description: fmt.Sprintf("过期数据清理 (%02d:%02d)", hour, minute),
		}
		logger.Info("正常模式", "schedule_time", fmt.Sprintf("%02d:%02d", hour, minute), "retention_days", s.cfg.Scheduler.RetentionDays)
	}

	logger.Info("定时任务初始化完成", "task_count", len(s.tasks))
}

// 主循环
func (s *Scheduler) run() {
	checkInterval := s.cfg.Scheduler.CheckIntervalSec
	if checkInterval <= 0 {
		checkInterval = 60 // 默认值
	}
	ticker := time.NewTicker(secondsToDuration(checkInterval))
	defer ticker.Stop()

	for now := range ticker.C {
		s.checkTasks(now)
	}
}

// 检查任务
func (s *Scheduler) checkTasks(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for taskType, status := range s.tasks {
		// 如果任务正在运行，跳过
		if status.IsRunning {
			continue
		}

		if status.NextRun.IsZero() {
			continue
		}

		// 如果到达或超过下次运行时间，执行任务
		if now.After(status.NextRun) || now.Equal(status.NextRun) {
			status.IsRunning = true
			go s.runTask(taskType, now)
		}
	}
}

// 运行任务
func (s *Scheduler) runTask(taskType TaskType, now time.Time) {
	defer func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		status := s.tasks[taskType]
		status.IsRunning = false
		status.LastRun = now

		// 更新下次运行时间
		switch taskType {
		case TaskCleanup:
			if s.cfg.Debug.Enabled {
				freqSeconds := s.cfg.Debug.CleanupFreqSec
				if freqSeconds <= 0 {
					freqSeconds = 600
				}
				status.NextRun = now.Add(secondsToDuration(freqSeconds))
			} else {
				hour, minute := validateHourMinute(s.cfg.Scheduler.CleanupHour, s.cfg.Scheduler.CleanupMin)
				status.NextRun = getNextTimePoint(now, hour, minute)
			}
		}

		logger.Info("任务执行完成", "task", status.Description, "next_run", status.NextRun.Format("2006-01-02 15:04:05"))
	}()

	logger.Info("开始执行任务", "task", func() string {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		if status, ok := s.tasks[taskType]; ok {
			return status.Description
		}
		return "Unknown Task"
	}())

	switch taskType {
	case TaskCleanup:
		s.runCleanup()
	}
}

// runCleanup 清理过期的上传文件和数据库记录
func (s *Scheduler) runCleanup() {
	retentionDays := s.cfg.Scheduler.RetentionDays
	if retentionDays <= 0 {
		retentionDays = 30
	}

	// 步骤1：删除过期分析记录对应的上传文件
	logger.Info("[步骤1/3] 开始清理过期上传文件")
	paths, err := repository.ListExpiredAnalysisPaths(retentionDays)
	if err != nil {
		logger.Error("获取过期文件列表失败", "error", err)
	} else {
		removed := 0
		for _, path := range paths {
			if path == "" {
				continue
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.Warn("删除过期文件失败", "path", path, "error", err)
				continue
			}
			removed++
		}
		logger.Info("[步骤1/3] 过期上传文件清理完成", "removed", removed, "total", len(paths))
	}

	// 步骤2：清理数据库中的过期记录
	logger.Info("[步骤2/3] 开始清理过期数据库记录")
	if count, err := repository.PurgeExpiredOptimizations(retentionDays); err != nil {
		logger.Error("清理过期优化记录失败", "error", err)
	} else {
		logger.Info("过期优化记录已清理", "count", count)
	}
	if count, err := repository.PurgeExpiredAnalyses(retentionDays); err != nil {
		logger.Error("清理过期分析记录失败", "error", err)
	} else {
		logger.Info("过期分析记录已清理", "count", count)
	}
	logger.Info("[步骤2/3] 过期数据库记录清理完成")

	// 步骤3：清理上传目录中没有对应记录的残留文件
	logger.Info("[步骤3/3] 开始清理上传目录残留文件")
	s.cleanupOrphanedUploads(retentionDays)
	logger.Info("[步骤3/3] 上传目录残留文件清理完成")
}

// cleanupOrphanedUploads 删除上传目录中超过保留期的残留文件
func (s *Scheduler) cleanupOrphanedUploads(retentionDays int) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(s.cfg.Upload.Dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("读取上传目录失败", "dir", s.cfg.Upload.Dir, "error", err)
		}
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.cfg.Upload.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("删除残留文件失败", "path", path, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("残留文件已删除", "count", removed)
	}
}
