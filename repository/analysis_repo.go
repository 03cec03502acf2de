package repository

import (
	"database/sql"
	"time"

	"cv_optimizer/db"
	"cv_optimizer/models"
)

// SaveAnalysis 保存CV分析记录，返回新记录ID
func SaveAnalysis(a *models.CVAnalysis) (int64, error) {
	result, err := db.DB.Exec(`
		INSERT INTO cv_analyses
			(original_filename, stored_path, content_md5, extracted_text,
			 seniority, industry, job_type, specific_role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`, a.OriginalFilename, a.StoredPath, a.ContentMD5, a.ExtractedText,
		a.Seniority, a.Industry, a.JobType, a.SpecificRole)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetAnalysis 按ID获取CV分析记录
func GetAnalysis(id int64) (*models.CVAnalysis, error) {
	var a models.CVAnalysis
	err := db.DB.QueryRow(`
		SELECT id, original_filename, stored_path, content_md5, extracted_text,
		       COALESCE(seniority, ''), COALESCE(industry, ''),
		       COALESCE(job_type, ''), COALESCE(specific_role, ''), created_at
		FROM cv_analyses
		WHERE id = ?
	`, id).Scan(&a.ID, &a.OriginalFilename, &a.StoredPath, &a.ContentMD5, &a.ExtractedText,
		&a.Seniority, &a.Industry, &a.JobType, &a.SpecificRole, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAnalysisByContentMD5 按内容指纹查找最近一次分析，重复上传时复用
func FindAnalysisByContentMD5(contentMD5 string) (*models.CVAnalysis, error) {
	var a models.CVAnalysis
	err := db.DB.QueryRow(`
		SELECT id, original_filename, stored_path, content_md5, extracted_text,
		       COALESCE(seniority, ''), COALESCE(industry, ''),
		       COALESCE(job_type, ''), COALESCE(specific_role, ''), created_at
		FROM cv_analyses
		WHERE content_md5 = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, contentMD5).Scan(&a.ID, &a.OriginalFilename, &a.StoredPath, &a.ContentMD5, &a.ExtractedText,
		&a.Seniority, &a.Industry, &a.JobType, &a.SpecificRole, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListRecentAnalyses 获取最近的分析记录，用于历史页面
func ListRecentAnalyses(limit int) ([]models.CVAnalysis, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.DB.Query(`
		SELECT id, original_filename, COALESCE(seniority, ''), COALESCE(industry, ''),
		       COALESCE(job_type, ''), COALESCE(specific_role, ''), created_at
		FROM cv_analyses
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []models.CVAnalysis
	for rows.Next() {
		var a models.CVAnalysis
		if err := rows.Scan(&a.ID, &a.OriginalFilename, &a.Seniority, &a.Industry,
			&a.JobType, &a.SpecificRole, &a.CreatedAt); err != nil {
			continue
		}
		analyses = append(analyses, a)
	}

	return analyses, rows.Err()
}

// ListExpiredAnalysisPaths 获取超过保留期的分析记录的文件路径，供清理任务删除文件
func ListExpiredAnalysisPaths(retentionDays int) ([]string, error) {
	rows, err := db.DB.Query(`
		SELECT stored_path
		FROM cv_analyses
		WHERE created_at < DATE_SUB(NOW(), INTERVAL ? DAY)
		  AND stored_path != ''
	`, retentionDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			continue
		}
		paths = append(paths, p)
	}

	return paths, rows.Err()
}

// PurgeExpiredAnalyses 删除超过保留期的分析记录，返回删除行数
func PurgeExpiredAnalyses(retentionDays int) (int64, error) {
	result, err := db.DB.Exec(`
		DELETE FROM cv_analyses
		WHERE created_at < DATE_SUB(NOW(), INTERVAL ? DAY)
	`, retentionDays)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// TouchAnalysisTime 刷新记录时间，重复上传命中时调用，保护仍在使用的记录不被清理
func TouchAnalysisTime(id int64, t time.Time) error {
	_, err := db.DB.Exec(`UPDATE cv_analyses SET created_at = ? WHERE id = ?`, t, id)
	return err
}
