package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/styleai/internal/database"
	"github.com/hitoshi/styleai/internal/model"
)

// setupSQLiteDB は一時ディレクトリのSQLiteファイルにスキーマを作成して返す。
func setupSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	dbURL := "sqlite3://" + filepath.Join(t.TempDir(), "store_test.db")
	require.NoError(t, database.RunMigrations(dbURL))

	db, err := database.Open(dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteStore_SignupThenLogin(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSQLUserRepo(db)
	ctx := context.Background()

	user := &model.User{
		ID:           "user-1",
		Name:         "Aiko",
		Phone:        "09012345678",
		Email:        "aiko@example.com",
		PasswordHash: "hash-1",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, user))

	// phone・emailのどちらでもログインできる
	for _, ident := range []string{"09012345678", "aiko@example.com"} {
		got, err := repo.FindByLogin(ctx, ident, "hash-1")
		require.NoError(t, err)
		require.NotNil(t, got, "identifier %q", ident)
		assert.Equal(t, "Aiko", got.Name)
	}

	got, err := repo.FindByLogin(ctx, "aiko@example.com", "wrong-hash")
	require.NoError(t, err)
	assert.Nil(t, got)

	byID, err := repo.FindByID(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "09012345678", byID.Phone)

	missing, err := repo.FindByID(ctx, "no-such-user")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStore_DuplicatePhoneOrEmail_Conflict(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSQLUserRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{
		ID: "user-1", Phone: "0900", Email: "a@example.com", PasswordHash: "h", CreatedAt: time.Now().UTC(),
	}))

	tests := []struct {
		name string
		user *model.User
	}{
		{name: "same phone", user: &model.User{ID: "user-2", Name: "Other", Phone: "0900", PasswordHash: "x", CreatedAt: time.Now().UTC()}},
		{name: "same email", user: &model.User{ID: "user-3", Email: "a@example.com", PasswordHash: "y", CreatedAt: time.Now().UTC()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			var apiErr *model.APIError
			require.True(t, errors.As(err, &apiErr), "expected conflict, got %v", err)
			assert.Equal(t, model.ErrCodeConflict, apiErr.Code)
		})
	}

	count, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteStore_HistoryNewestFirstCappedAt20(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSQLRecommendationRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		require.NoError(t, repo.Create(ctx, &model.Recommendation{
			ID:          fmt.Sprintf("rec-%02d", i),
			UserID:      "user-1",
			RequestType: model.RequestTypeLeadScore,
			InputData:   "{}",
			AIResponse:  fmt.Sprintf("result %d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
	// 他ユーザーの行は含まれない
	require.NoError(t, repo.Create(ctx, &model.Recommendation{
		ID: "rec-other", UserID: "user-2", RequestType: model.RequestTypePitch,
		InputData: "{}", AIResponse: "x", CreatedAt: base.Add(time.Hour),
	}))

	recs, err := repo.ListByUserID(ctx, "user-1", 50)

	require.NoError(t, err)
	require.Len(t, recs, MaxHistoryLimit)
	assert.Equal(t, "rec-24", recs[0].ID)
	assert.Equal(t, "rec-05", recs[len(recs)-1].ID)
	for i := 1; i < len(recs); i++ {
		assert.False(t, recs[i].CreatedAt.After(recs[i-1].CreatedAt), "history must be newest first")
	}
}

func TestSQLiteStore_StatsAndDanglingUser(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	profiles := NewSQLProfileRepo(db)
	recs := NewSQLRecommendationRepo(db)

	now := time.Now().UTC()
	// 存在しないユーザーを参照するプロフィールでも読み取りは失敗しない
	require.NoError(t, profiles.Create(ctx, &model.FashionProfile{
		ID: "p1", UserID: "ghost", Gender: "Male", Age: 30, Size: "L",
		CultureStyle: "Universal", DressStyle: "Casual", CreatedAt: now,
	}))
	// 匿名プロフィール
	require.NoError(t, profiles.Create(ctx, &model.FashionProfile{
		ID: "p2", Gender: "Female", Age: 25, Size: "S",
		CultureStyle: "Western", DressStyle: "Formal", PhotoPath: "static/uploads/x.png", CreatedAt: now,
	}))

	for i, rt := range []model.RequestType{model.RequestTypeOutfit, model.RequestTypeOutfit, model.RequestTypeCampaign} {
		require.NoError(t, recs.Create(ctx, &model.Recommendation{
			ID: fmt.Sprintf("r%d", i), UserID: "ghost", RequestType: rt,
			InputData: "{}", AIResponse: "ok", CreatedAt: now,
		}))
	}
	require.NoError(t, recs.Create(ctx, &model.Recommendation{
		ID: "anon", RequestType: model.RequestTypePitch, InputData: "{}", AIResponse: "ok", CreatedAt: now,
	}))

	total, byType, err := recs.CountByUserID(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, byType[model.RequestTypeOutfit])
	assert.Equal(t, 1, byType[model.RequestTypeCampaign])

	profileCount, err := profiles.CountByUserID(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, 1, profileCount)

	allRecs, err := recs.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, allRecs)

	allProfiles, err := profiles.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, allProfiles)
}
