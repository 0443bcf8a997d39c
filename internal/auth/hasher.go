package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword はパスワードのSHA-256ダイジェストを小文字16進数で返す。
// サインアップ時とログイン時で同じ関数を使い、保存値との完全一致で照合する。
//
// TODO: ソルト付きの低速KDF（bcrypt/argon2id）へ移行する。既存ハッシュの再計算が必要なため
// ログイン成功時に再ハッシュする移行パスとセットで行う。
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
