package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/styleai/internal/model"
)

// SQLProfileRepo はdatabase/sqlを使用したプロフィールリポジトリ。
type SQLProfileRepo struct {
	db *sql.DB
}

// NewSQLProfileRepo はSQLProfileRepoを生成する。
func NewSQLProfileRepo(db *sql.DB) *SQLProfileRepo {
	return &SQLProfileRepo{db: db}
}

// Create はプロフィールを作成する。匿名リクエストの場合user_idはNULLになる。
func (r *SQLProfileRepo) Create(ctx context.Context, profile *model.FashionProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fashion_profiles
		 (id, user_id, gender, age, size, culture_style, dress_style, photo_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		profile.ID, nullString(profile.UserID), profile.Gender, profile.Age, profile.Size,
		profile.CultureStyle, profile.DressStyle, nullString(profile.PhotoPath), profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fashion profile: %w", err)
	}
	return nil
}

// CountByUserID はユーザーが作成したプロフィール数を返す。
func (r *SQLProfileRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fashion_profiles WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fashion profiles: %w", err)
	}
	return count, nil
}

// CountAll は全プロフィール数を返す。
func (r *SQLProfileRepo) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fashion_profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count fashion profiles: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ ProfileRepository = (*SQLProfileRepo)(nil)
