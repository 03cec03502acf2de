package repository

import (
	"database/sql"
	"encoding/json"

	"cv_optimizer/db"
	"cv_optimizer/models"
)

// SaveOptimization 保存CV优化记录，关键词以JSON形式入库
func SaveOptimization(o *models.Optimization) (int64, error) {
	var keywordsJSON interface{}
	if len(o.Keywords) > 0 {
		b, err := json.Marshal(o.Keywords)
		if err == nil {
			keywordsJSON = string(b)
		}
	}

	var analysisID interface{}
	if o.AnalysisID > 0 {
		analysisID = o.AnalysisID
	}

	result, err := db.DB.Exec(`
		INSERT INTO cv_optimizations
			(analysis_id, job_description, original_cv, optimized_cv, keywords,
			 seniority, industry, job_type, specific_role, created_at)
		VALUES (?, ?, ?, ?, CAST(? AS JSON), ?, ?, ?, ?, NOW())
	`, analysisID, o.JobDescription, o.OriginalCV, o.OptimizedCV, keywordsJSON,
		o.Seniority, o.Industry, o.JobType, o.SpecificRole)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetOptimization 按ID获取优化记录
func GetOptimization(id int64) (*models.Optimization, error) {
	var (
		o            models.Optimization
		analysisID   sql.NullInt64
		keywordsJSON sql.NullString
	)
	err := db.DB.QueryRow(`
		SELECT id, analysis_id, job_description, original_cv, optimized_cv, keywords,
		       COALESCE(seniority, ''), COALESCE(industry, ''),
		       COALESCE(job_type, ''), COALESCE(specific_role, ''), created_at
		FROM cv_optimizations
		WHERE id = ?
	`, id).Scan(&o.ID, &analysisID, &o.JobDescription, &o.OriginalCV, &o.OptimizedCV, &keywordsJSON,
		&o.Seniority, &o.Industry, &o.JobType, &o.SpecificRole, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	if analysisID.Valid {
		o.AnalysisID = analysisID.Int64
	}
	if keywordsJSON.Valid && keywordsJSON.String != "" {
		_ = json.Unmarshal([]byte(keywordsJSON.String), &o.Keywords)
	}

	return &o, nil
}

// ListRecentOptimizations 获取最近的优化记录，不含正文字段
func ListRecentOptimizations(limit int) ([]models.Optimization, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.DB.Query(`
		SELECT id, COALESCE(seniority, ''), COALESCE(industry, ''),
		       COALESCE(job_type, ''), COALESCE(specific_role, ''), created_at
		FROM cv_optimizations
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Optimization
	for rows.Next() {
		var o models.Optimization
		if err := rows.Scan(&o.ID, &o.Seniority, &o.Industry,
			&o.JobType, &o.SpecificRole, &o.CreatedAt); err != nil {
			continue
		}
		result = append(result, o)
	}

	return result, rows.Err()
}

// PurgeExpiredOptimizations 删除超过保留期的优化记录，返回删除行数
func PurgeExpiredOptimizations(retentionDays int) (int64, error) {
	result, err := db.DB.Exec(`
		DELETE FROM cv_optimizations
		WHERE created_at < DATE_SUB(NOW(), INTERVAL ? DAY)
	`, retentionDays)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
