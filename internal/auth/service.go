// Package auth はパスワード認証と署名付きセッションを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/styleai/internal/model"
	"github.com/hitoshi/styleai/internal/repository"
)

// SignupInput はサインアップの入力。
type SignupInput struct {
	Name     string
	Phone    string
	Email    string
	Password string
}

// LoginInput はログインの入力。Identifierはphoneまたはemail。
type LoginInput struct {
	Identifier string
	Password   string
}

// Result はサインアップ・ログイン成功時の結果。
// Tokenはセッションcookieにそのまま設定する。
type Result struct {
	User    *model.User
	Session *model.Session
	Token   string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	sessions *SessionCodec
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, sessions *SessionCodec) *Service {
	return &Service{
		userRepo: userRepo,
		sessions: sessions,
	}
}

// Signup はユーザーを登録し、セッションを発行する。
// phoneとemailの両方が空、またはパスワードが空の場合はバリデーションエラーを返す。
// phone/emailが登録済みの場合はリポジトリの競合エラーをそのまま返す。
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Result, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	email := strings.TrimSpace(in.Email)

	if phone == "" && email == "" {
		return nil, model.NewValidationError("Phone or email required")
	}
	if in.Password == "" {
		return nil, model.NewValidationError("Password required")
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Phone:        phone,
		Email:        email,
		PasswordHash: HashPassword(in.Password),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("new user created", slog.String("user_id", user.ID))

	return s.issue(user, name)
}

// Login は識別子とパスワードを照合し、セッションを発行する。
func (s *Service) Login(ctx context.Context, in LoginInput) (*Result, error) {
	ident := strings.TrimSpace(in.Identifier)
	if ident == "" {
		return nil, model.NewInvalidCredentialsError()
	}

	user, err := s.userRepo.FindByLogin(ctx, ident, HashPassword(in.Password))
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))

	return s.issue(user, user.DisplayName(ident))
}

// CurrentUser はセッションのユーザーIDからユーザーを取得する。
// ユーザーが存在しない場合はnilを返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *Service) issue(user *model.User, displayName string) (*Result, error) {
	token, session, err := s.sessions.Issue(user.ID, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	return &Result{User: user, Session: session, Token: token}, nil
}
