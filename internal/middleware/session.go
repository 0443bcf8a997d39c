// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/styleai/internal/model"
)

// SessionCookieName は署名付きセッショントークンを保持するCookie名。
const SessionCookieName = "styleai_session"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションを格納するためのキー。
var sessionContextKey = contextKey("session")

// SessionParser はセッショントークンの検証に必要なインターフェース。
type SessionParser interface {
	Parse(token string) (*model.Session, error)
}

// NewSessionMiddleware はCookieのセッショントークンを検証し、
// 有効な場合にセッションをリクエストコンテキストに注入するミドルウェアを返す。
// Cookieが無い・不正・期限切れの場合は匿名リクエストとしてそのまま通す。
func NewSessionMiddleware(parser SessionParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := parser.Parse(cookie.Value)
			if err != nil || session == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
		})
	}
}

// NewRequireSessionMiddleware はセッションが無いリクエストに401を返すミドルウェアを返す。
// NewSessionMiddleware の後に配置する。
func NewRequireSessionMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := UserIDFromContext(r.Context()); err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok || session == nil || session.UserID == "" {
		return nil, false
	}
	return session, true
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 匿名リクエストの場合はエラーを返す。
func UserIDFromContext(ctx context.Context) (string, error) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("user ID not found in context")
	}
	return session.UserID, nil
}

// OptionalUserID はリクエストコンテキストのユーザーIDを返す。匿名の場合は空文字列。
func OptionalUserID(ctx context.Context) string {
	userID, _ := UserIDFromContext(ctx)
	return userID
}

// ContextWithSession はコンテキストにセッションを注入する。
func ContextWithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// ContextWithUserID はコンテキストにユーザーIDだけのセッションを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return ContextWithSession(ctx, &model.Session{UserID: userID})
}
