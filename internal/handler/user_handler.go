package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/styleai/internal/middleware"
	"github.com/hitoshi/styleai/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	History(ctx context.Context, userID string) ([]*model.Recommendation, error)
	Stats(ctx context.Context, userID string) (*model.UserStats, error)
	PlatformStats(ctx context.Context) (*model.PlatformStats, error)
}

// UserHandler は履歴・利用統計のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

type historyEntry struct {
	ID          string `json:"id"`
	RequestType string `json:"request_type"`
	InputData   string `json:"input_data"`
	AIResponse  string `json:"ai_response"`
	CreatedAt   string `json:"created_at"`
}

type historyResponse struct {
	Success bool           `json:"success"`
	History []historyEntry `json:"history"`
}

type userStatsBody struct {
	TotalRecommendations int            `json:"total_recommendations"`
	ProfilesCreated      int            `json:"profiles_created"`
	ByType               map[string]int `json:"by_type"`
}

type platformStatsBody struct {
	TotalUsers           int `json:"total_users"`
	TotalRecommendations int `json:"total_recommendations"`
	TotalProfiles        int `json:"total_profiles"`
}

type statsResponse[T any] struct {
	Success bool `json:"success"`
	Stats   T    `json:"stats"`
}

// History はログインユーザーの生成履歴を新しい順に返す。
// GET /api/history
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	recs, err := h.service.History(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entries := make([]historyEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, historyEntry{
			ID:          rec.ID,
			RequestType: string(rec.RequestType),
			InputData:   rec.InputData,
			AIResponse:  rec.AIResponse,
			CreatedAt:   formatTime(rec.CreatedAt),
		})
	}

	writeJSON(w, http.StatusOK, historyResponse{Success: true, History: entries})
}

// Stats はログインユーザーの利用統計を返す。
// GET /api/stats
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	byType := make(map[string]int, len(stats.ByType))
	for t, n := range stats.ByType {
		byType[string(t)] = n
	}

	writeJSON(w, http.StatusOK, statsResponse[userStatsBody]{
		Success: true,
		Stats: userStatsBody{
			TotalRecommendations: stats.TotalRecommendations,
			ProfilesCreated:      stats.ProfilesCreated,
			ByType:               byType,
		},
	})
}

// PlatformStats はサービス全体の利用統計を返す。ログインは不要。
// GET /api/platform_stats
func (h *UserHandler) PlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.PlatformStats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse[platformStatsBody]{
		Success: true,
		Stats: platformStatsBody{
			TotalUsers:           stats.TotalUsers,
			TotalRecommendations: stats.TotalRecommendations,
			TotalProfiles:        stats.TotalProfiles,
		},
	})
}
