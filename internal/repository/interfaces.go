// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/styleai/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// phoneまたはemailが既に登録済みの場合は model.ErrCodeConflict の APIError を返す。
	Create(ctx context.Context, user *model.User) error

	// FindByLogin は識別子（phoneまたはemail）とパスワードハッシュが一致するユーザーを取得する。
	// 見つからない場合はnilを返す。
	FindByLogin(ctx context.Context, identifier, passwordHash string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CountAll は登録ユーザー数を返す。
	CountAll(ctx context.Context) (int, error)
}

// ProfileRepository はスタイリングプロフィールの永続化インターフェース。
type ProfileRepository interface {
	// Create はプロフィールを作成する。
	Create(ctx context.Context, profile *model.FashionProfile) error

	// CountByUserID はユーザーが作成したプロフィール数を返す。
	CountByUserID(ctx context.Context, userID string) (int, error)

	// CountAll は全プロフィール数を返す。
	CountAll(ctx context.Context) (int, error)
}

// RecommendationRepository はAI生成結果の永続化インターフェース。
type RecommendationRepository interface {
	// Create は生成結果を1件保存する。
	Create(ctx context.Context, rec *model.Recommendation) error

	// ListByUserID はユーザーの生成履歴をcreated_at降順で返す。
	// limitは1〜MaxHistoryLimitに丸められる。
	ListByUserID(ctx context.Context, userID string, limit int) ([]*model.Recommendation, error)

	// CountByUserID はユーザーの生成件数の合計とrequest_typeごとの件数を返す。
	CountByUserID(ctx context.Context, userID string) (int, map[model.RequestType]int, error)

	// CountAll は全生成件数を返す。
	CountAll(ctx context.Context) (int, error)
}

// MaxHistoryLimit は履歴取得1回あたりの最大件数。
const MaxHistoryLimit = 20

// clampLimit はlimitを1〜MaxHistoryLimitの範囲に丸める。
func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
