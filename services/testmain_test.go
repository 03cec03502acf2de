package services

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"cv_optimizer/logger"
)

// TestMain 初始化全局日志器，避免测试中调用日志时空指针崩溃
func TestMain(m *testing.M) {
	logger.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}
