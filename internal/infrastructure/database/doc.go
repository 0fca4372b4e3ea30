// Package database provides relational store connectivity for Radio Loan Core.
//
// This package manages:
//   - Connections for SQLite (mattn/go-sqlite3), PostgreSQL (pgx) and MySQL
//     (go-sql-driver), wrapped in sqlx for struct scanning and bind rebinding
//   - A goqu dialect per backend so stores build portable SQL
//   - Transaction helpers (BeginTx, RunInTx)
//   - Embedded schema migrations, one directory per driver
//
// SQLite specifics:
//   - WAL mode allows concurrent reads during writes
//   - Foreign keys are enabled and transactions begin IMMEDIATE
//   - The pool holds a single connection (single writer)
//   - The database file is restricted to 0600
//
// Usage:
//
//	db, err := database.Open(database.Config{Driver: "sqlite3", Path: "./data/radioloan.db", WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration Strategy:
//
// Migrations are additive-only:
//   - New columns must be NULLABLE or have DEFAULT values
//   - Each migration has both .up.sql and .down.sql
//   - Every driver directory carries the same versions
package database
