// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/hitoshi/styleai/internal/auth"
	"github.com/hitoshi/styleai/internal/middleware"
	"github.com/hitoshi/styleai/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Signup(ctx context.Context, in auth.SignupInput) (*auth.Result, error)
	Login(ctx context.Context, in auth.LoginInput) (*auth.Result, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はサインアップ・ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
}

type meUser struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	CreatedAt string  `json:"created_at"`
}

type meResponse struct {
	LoggedIn bool    `json:"logged_in"`
	User     *meUser `json:"user,omitempty"`
}

// Signup はユーザーを登録し、セッションCookieを設定する。
// POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := h.service.Signup(r.Context(), auth.SignupInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, authResponse{Success: true, Name: result.User.Name})
}

// Login は識別子（phoneまたはemail）とパスワードでログインし、セッションCookieを設定する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), auth.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, authResponse{Success: true, Name: result.User.Name})
}

// Logout はセッションCookieを削除する。サーバー側に破棄するものはない。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me は現在のログインユーザー情報を返す。
// 匿名の場合やユーザーが削除済みの場合は logged_in:false を返す。
// GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.OptionalUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusOK, meResponse{LoggedIn: false})
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, meResponse{LoggedIn: false})
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		LoggedIn: true,
		User: &meUser{
			ID:        user.ID,
			Name:      user.Name,
			Phone:     optionalString(user.Phone),
			Email:     optionalString(user.Email),
			CreatedAt: formatTime(user.CreatedAt),
		},
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// decodeJSONBody はリクエストボディをJSONとしてデコードする。
// 空ボディは全項目未入力として扱い、サービス層のバリデーションに任せる。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || err == io.EOF {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		middleware.WriteErrorResponse(w, http.StatusRequestEntityTooLarge, model.NewPayloadTooLargeError(maxErr.Limit))
		return false
	}

	middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("Invalid request body"))
	return false
}

// optionalString は空文字列をJSONのnullとして表現するためのポインタを返す。
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
