package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Driver はDATABASE_URLのスキームから決まるdatabase/sqlドライバ名。
type Driver string

const (
	// DriverSQLite はファイルベースのSQLite（既定）。
	DriverSQLite Driver = "sqlite3"
	// DriverPostgres はPostgreSQL。
	DriverPostgres Driver = "postgres"
)

// sqliteDefaultParams は同時リクエストでの書き込み競合を待機で吸収するための既定パラメータ。
const sqliteDefaultParams = "_busy_timeout=5000&_journal_mode=WAL"

// ParseURL はDATABASE_URLからドライバとsql.Openに渡すDSNを決定する。
//   - sqlite3://path/to/file.db → (sqlite3, "path/to/file.db?_busy_timeout=...")
//   - postgres://... / postgresql://... → (postgres, URLそのまま)
func ParseURL(databaseURL string) (Driver, string, error) {
	scheme, rest, ok := strings.Cut(databaseURL, "://")
	if !ok {
		return "", "", fmt.Errorf("database URL has no scheme: %q", databaseURL)
	}

	switch strings.ToLower(scheme) {
	case "sqlite3", "sqlite":
		if rest == "" {
			return "", "", fmt.Errorf("sqlite database path is empty")
		}
		if !strings.Contains(rest, "?") {
			rest += "?" + sqliteDefaultParams
		}
		return DriverSQLite, rest, nil
	case "postgres", "postgresql":
		return DriverPostgres, databaseURL, nil
	default:
		return "", "", fmt.Errorf("unsupported database scheme: %q", scheme)
	}
}

// Open はDATABASE_URLに応じたドライバでデータベース接続を開く。
// sql.Openは接続を試行しないため、実際の接続確認にはdb.Ping()を使用すること。
func Open(databaseURL string) (*sql.DB, error) {
	driver, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return db, nil
}

// IsUniqueViolation はエラーが一意制約違反（phone/emailの重複など）かどうかを判定する。
// PostgreSQL（23505）とSQLite（SQLITE_CONSTRAINT_UNIQUE）の両方に対応する。
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}
