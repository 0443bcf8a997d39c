package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/styleai/internal/model"
)

// SQLRecommendationRepo はdatabase/sqlを使用したAI生成結果リポジトリ。
type SQLRecommendationRepo struct {
	db *sql.DB
}

// NewSQLRecommendationRepo はSQLRecommendationRepoを生成する。
func NewSQLRecommendationRepo(db *sql.DB) *SQLRecommendationRepo {
	return &SQLRecommendationRepo{db: db}
}

// Create は生成結果を1件保存する。
func (r *SQLRecommendationRepo) Create(ctx context.Context, rec *model.Recommendation) error {
	if !rec.RequestType.Valid() {
		return fmt.Errorf("invalid request type: %q", rec.RequestType)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ai_recommendations
		 (id, user_id, profile_id, request_type, input_data, ai_response, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, nullString(rec.UserID), nullString(rec.ProfileID), string(rec.RequestType),
		rec.InputData, rec.AIResponse, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの生成履歴をcreated_at降順で返す。
// 同時刻の行はidの降順で並べ、結果を安定させる。
func (r *SQLRecommendationRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]*model.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, profile_id, request_type, input_data, ai_response, created_at
		 FROM ai_recommendations
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*model.Recommendation
	for rows.Next() {
		var (
			rec         model.Recommendation
			uid, pid    sql.NullString
			requestType string
		)
		if err := rows.Scan(&rec.ID, &uid, &pid, &requestType, &rec.InputData, &rec.AIResponse, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		rec.UserID = uid.String
		rec.ProfileID = pid.String
		rec.RequestType = model.RequestType(requestType)
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}

	return recs, nil
}

// CountByUserID はユーザーの生成件数の合計とrequest_typeごとの件数を返す。
func (r *SQLRecommendationRepo) CountByUserID(ctx context.Context, userID string) (int, map[model.RequestType]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT request_type, COUNT(*)
		 FROM ai_recommendations
		 WHERE user_id = $1
		 GROUP BY request_type`,
		userID,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to count recommendations: %w", err)
	}
	defer rows.Close()

	total := 0
	byType := make(map[model.RequestType]int)
	for rows.Next() {
		var (
			requestType string
			count       int
		)
		if err := rows.Scan(&requestType, &count); err != nil {
			return 0, nil, fmt.Errorf("failed to scan recommendation count: %w", err)
		}
		byType[model.RequestType(requestType)] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("failed to iterate recommendation counts: %w", err)
	}

	return total, byType, nil
}

// CountAll は全生成件数を返す。
func (r *SQLRecommendationRepo) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ai_recommendations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recommendations: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ RecommendationRepository = (*SQLRecommendationRepo)(nil)
