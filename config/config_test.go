package config

import "testing"

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	if cfg.OpenRouter.BaseURL != "https://openrouter.ai/api" {
		t.Errorf("BaseURL = %q", cfg.OpenRouter.BaseURL)
	}
	if cfg.OpenRouter.Model == "" {
		t.Error("Model should have a default")
	}
	if cfg.OpenRouter.RetryCount <= 0 {
		t.Error("RetryCount should have a default")
	}
	if cfg.Upload.MaxSizeMB != 5 {
		t.Errorf("MaxSizeMB = %d, want 5", cfg.Upload.MaxSizeMB)
	}
	if len(cfg.Upload.AllowedExts) != 3 {
		t.Errorf("AllowedExts = %v", cfg.Upload.AllowedExts)
	}
	if cfg.Highlight.MinKeywordLength != 3 {
		t.Errorf("MinKeywordLength = %d, want 3", cfg.Highlight.MinKeywordLength)
	}
	if cfg.Scheduler.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.Scheduler.RetentionDays)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	var cfg Config
	cfg.OpenRouter.Model = "custom-model"
	cfg.Upload.MaxSizeMB = 10
	cfg.Highlight.MinKeywordLength = 5
	applyDefaults(&cfg)

	if cfg.OpenRouter.Model != "custom-model" {
		t.Errorf("Model = %q, want custom-model", cfg.OpenRouter.Model)
	}
	if cfg.Upload.MaxSizeMB != 10 {
		t.Errorf("MaxSizeMB = %d, want 10", cfg.Upload.MaxSizeMB)
	}
	if cfg.Highlight.MinKeywordLength != 5 {
		t.Errorf("MinKeywordLength = %d, want 5", cfg.Highlight.MinKeywordLength)
	}
}

func TestBuildDSN(t *testing.T) {
	var cfg Config
	cfg.DB.Username = "user"
	cfg.DB.Password = "pass"
	cfg.DB.Host = "localhost"
	cfg.DB.Port = 3306
	cfg.DB.Database = "cv_optimizer"
	cfg.DB.Charset = "utf8mb4"
	cfg.DB.ParseTime = true

	want := "user:pass@tcp(localhost:3306)/cv_optimizer?charset=utf8mb4&parseTime=true"
	if got := buildDSN(&cfg); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildDSN_NoParseTime(t *testing.T) {
	var cfg Config
	cfg.DB.Username = "user"
	cfg.DB.Host = "db"
	cfg.DB.Port = 3306
	cfg.DB.Database = "app"
	cfg.DB.Charset = "utf8mb4"

	want := "user:@tcp(db:3306)/app?charset=utf8mb4"
	if got := buildDSN(&cfg); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
