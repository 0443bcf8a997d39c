// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError は必須項目の未入力などの入力エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "Check the form fields and submit again.",
	}
}

// NewConflictError は電話番号・メールアドレスの重複エラーを生成する。
func NewConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  "Phone/email already registered",
		Category: "validation",
		Action:   "Log in with the existing account or use another phone/email.",
	}
}

// NewInvalidCredentialsError は認証情報の不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials",
		Category: "auth",
		Action:   "Check your phone/email and password.",
	}
}

// NewUnauthorizedError はセッションが無い場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Not logged in",
		Category: "auth",
		Action:   "Log in to see your history.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "auth",
		Action:   "Log in again.",
	}
}

// NewPayloadTooLargeError はアップロードサイズ超過エラーを生成する。
func NewPayloadTooLargeError(limit int64) *APIError {
	return &APIError{
		Code:     ErrCodePayloadTooLarge,
		Message:  fmt.Sprintf("Request body exceeds %d MiB", limit>>20),
		Category: "validation",
		Action:   "Upload a smaller photo.",
	}
}

// NewRateLimitError は /signup と /login の試行回数超過エラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "Too many attempts. Please try again later.",
		Category: "system",
		Action:   "Please wait and retry after the specified time.",
	}
}

// NewInternalError は内部エラーの統一表現を生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal error",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	}
}
