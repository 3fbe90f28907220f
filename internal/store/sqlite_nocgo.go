//go:build !cgo
// +build !cgo

package store

import (
	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"

func sqliteDSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(0)"
}
