// Package repository implements the domain repository interfaces on top of
// dbstore, for both SQLite and PostgreSQL.
package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"hr-approvals/internal/domain"
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &domain.ConflictError{Message: "resource already exists"}
		case pgForeignKeyViolation:
			return &domain.ValidationError{Message: "referenced resource does not exist"}
		case pgCheckViolation:
			return &domain.ConflictError{Message: "change violates a ledger constraint: " + pgErr.ConstraintName}
		}
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return &domain.ConflictError{Message: "resource already exists"}
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &domain.ValidationError{Message: "referenced resource does not exist"}
	case strings.Contains(msg, "CHECK constraint failed"):
		return &domain.ConflictError{Message: "change violates a ledger constraint"}
	}
	return err
}

func ensureID(id string) string {
	if id == "" {
		return domain.NewID()
	}
	return id
}

func ensureTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
