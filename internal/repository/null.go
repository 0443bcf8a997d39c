package repository

import "database/sql"

// nullString は空文字列をNULLとして書き込むためのsql.NullStringを返す。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
