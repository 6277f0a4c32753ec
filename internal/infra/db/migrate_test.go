package db_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"quantum-digest/internal/infra/db"
)

func TestMigrateUp(t *testing.T) {
	pool, mock, _ := sqlmock.New()
	defer func() { _ = pool.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS subscribers`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS idx_subscribers_active`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := db.MigrateUp(pool); err != nil {
		t.Fatalf("MigrateUp err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateUp_TableError(t *testing.T) {
	pool, mock, _ := sqlmock.New()
	defer func() { _ = pool.Close() }()

	execErr := errors.New("permission denied for schema public")
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS subscribers`)).
		WillReturnError(execErr)

	if err := db.MigrateUp(pool); !errors.Is(err, execErr) {
		t.Fatalf("expected exec error to surface, got %v", err)
	}
}

func TestMigrateUp_IndexError(t *testing.T) {
	pool, mock, _ := sqlmock.New()
	defer func() { _ = pool.Close() }()

	execErr := errors.New("relation is locked")
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS subscribers`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS idx_subscribers_active`)).
		WillReturnError(execErr)

	if err := db.MigrateUp(pool); !errors.Is(err, execErr) {
		t.Fatalf("expected exec error to surface, got %v", err)
	}
}
