// Package database はデータベース接続とスキーマ管理を提供する。
package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateURL はgolang-migrateのデータベースドライバが解釈できるURLに変換する。
// "sqlite://" は "sqlite3://" に正規化する。
func migrateURL(databaseURL string) (string, error) {
	driver, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return "", err
	}
	if driver == DriverSQLite {
		return "sqlite3://" + dsn, nil
	}
	return dsn, nil
}

// NewMigrator はスキーマ作成用のmigrateインスタンスを生成する。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	url, err := migrateURL(databaseURL)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations はスキーマを作成する。起動時に毎回呼ばれる。
// すでに最新の場合はエラーなしで返る。SQLはすべて IF NOT EXISTS で書かれている。
func RunMigrations(databaseURL string) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
