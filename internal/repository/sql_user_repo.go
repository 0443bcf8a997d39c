package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/styleai/internal/database"
	"github.com/hitoshi/styleai/internal/model"
)

// SQLUserRepo はdatabase/sqlを使用したユーザーリポジトリ。
// SQLite・PostgreSQLのどちらでも動作するSQLのみを使う。
type SQLUserRepo struct {
	db *sql.DB
}

// NewSQLUserRepo はSQLUserRepoを生成する。
func NewSQLUserRepo(db *sql.DB) *SQLUserRepo {
	return &SQLUserRepo{db: db}
}

const userColumns = `id, name, phone, email, password_hash, created_at`

// Create はユーザーを作成する。
// 一意制約違反は model.NewConflictError に変換する。
func (r *SQLUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, phone, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, nullString(user.Phone), nullString(user.Email), user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.NewConflictError()
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByLogin は識別子とパスワードハッシュが一致するユーザーを取得する。見つからない場合はnilを返す。
func (r *SQLUserRepo) FindByLogin(ctx context.Context, identifier, passwordHash string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE (phone = $1 OR email = $1) AND password_hash = $2
		 LIMIT 1`,
		identifier, passwordHash,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by login: %w", err)
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *SQLUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// CountAll は登録ユーザー数を返す。
func (r *SQLUserRepo) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		user         model.User
		phone, email sql.NullString
	)
	if err := row.Scan(&user.ID, &user.Name, &phone, &email, &user.PasswordHash, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Phone = phone.String
	user.Email = email.String
	return &user, nil
}

// compile-time interface check
var _ UserRepository = (*SQLUserRepo)(nil)
