// Package user はログインユーザーの履歴・利用統計を提供する。
package user

import (
	"context"
	"fmt"

	"github.com/hitoshi/styleai/internal/model"
	"github.com/hitoshi/styleai/internal/repository"
)

// Service はユーザーの履歴・統計のサービス層。
type Service struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	recRepo     repository.RecommendationRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	recRepo repository.RecommendationRepository,
) *Service {
	return &Service{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		recRepo:     recRepo,
	}
}

// History はユーザーの生成履歴を新しい順に最大 repository.MaxHistoryLimit 件返す。
func (s *Service) History(ctx context.Context, userID string) ([]*model.Recommendation, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	recs, err := s.recRepo.ListByUserID(ctx, userID, repository.MaxHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("履歴の取得に失敗しました: %w", err)
	}
	if recs == nil {
		recs = []*model.Recommendation{}
	}
	return recs, nil
}

// Stats はユーザーの利用統計を返す。
func (s *Service) Stats(ctx context.Context, userID string) (*model.UserStats, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	total, byType, err := s.recRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("生成件数の集計に失敗しました: %w", err)
	}

	profiles, err := s.profileRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("プロフィール数の集計に失敗しました: %w", err)
	}

	if byType == nil {
		byType = map[model.RequestType]int{}
	}

	return &model.UserStats{
		TotalRecommendations: total,
		ProfilesCreated:      profiles,
		ByType:               byType,
	}, nil
}

// PlatformStats はサービス全体の利用統計を返す。
func (s *Service) PlatformStats(ctx context.Context) (*model.PlatformStats, error) {
	users, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー数の集計に失敗しました: %w", err)
	}
	recs, err := s.recRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("生成件数の集計に失敗しました: %w", err)
	}
	profiles, err := s.profileRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("プロフィール数の集計に失敗しました: %w", err)
	}

	return &model.PlatformStats{
		TotalUsers:           users,
		TotalRecommendations: recs,
		TotalProfiles:        profiles,
	}, nil
}
