package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/styleai/internal/model"
)

// ErrInvalidSession はトークンが不正・期限切れの場合に返される。
var ErrInvalidSession = errors.New("invalid session token")

// sessionClaims はセッショントークンのペイロード。
type sessionClaims struct {
	UserID string `json:"uid"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// SessionCodec はクライアント保持型の署名付きセッション（HS256 JWT）を発行・検証する。
// サーバー側には何も保存しない。
type SessionCodec struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSessionCodec はSessionCodecを生成する。
func NewSessionCodec(secret []byte, maxAge time.Duration) *SessionCodec {
	return &SessionCodec{
		secret: secret,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// GenerateSecret はプロセス単位の署名鍵を生成する。
// SESSION_SECRETが未設定の場合に使用し、再起動でセッションは全て無効になる。
func GenerateSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return b, nil
}

// MaxAge はセッションの有効期間を返す。
func (c *SessionCodec) MaxAge() time.Duration {
	return c.maxAge
}

// Issue はユーザーIDと表示名を含むセッショントークンを発行する。
func (c *SessionCodec) Issue(userID, name string) (string, *model.Session, error) {
	if userID == "" {
		return "", nil, fmt.Errorf("user ID is required")
	}

	now := c.now()
	expiresAt := now.Add(c.maxAge)
	claims := &sessionClaims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, &model.Session{
		UserID:    userID,
		Name:      name,
		ExpiresAt: expiresAt.Truncate(time.Second),
	}, nil
}

// Parse はセッショントークンを検証し、内容を返す。
// 署名不一致・期限切れ・HS256以外のアルゴリズムはすべて ErrInvalidSession になる。
func (c *SessionCodec) Parse(token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidSession
	}

	return &model.Session{
		UserID:    claims.UserID,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
