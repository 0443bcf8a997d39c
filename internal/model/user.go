// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PhoneとEmailは少なくとも一方が設定される。未設定の項目は空文字列で表す。
type User struct {
	ID           string
	Name         string
	Phone        string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// DisplayName はセッションに保持する表示名を返す。
// 名前が未登録の場合はログインに使用した識別子を用いる。
func (u *User) DisplayName(identifier string) string {
	if u.Name != "" {
		return u.Name
	}
	return identifier
}

// Session はクライアント側に保持される署名付きセッションの内容を表す。
// サーバー側には保存しない。
type Session struct {
	UserID    string
	Name      string
	ExpiresAt time.Time
}
