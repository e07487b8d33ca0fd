package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	// ErrCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	ErrCodeUniqueViolation = "23505"
	// ErrCodeCheckViolation is the PostgreSQL error code for check constraint violations
	ErrCodeCheckViolation = "23514"
	// ErrCodeInsufficientPrivilege is the PostgreSQL error code raised when a
	// row-level security WITH CHECK policy rejects a write
	ErrCodeInsufficientPrivilege = "42501"
	// ErrCodeDuplicateSchema is the PostgreSQL error code for CREATE SCHEMA
	// on a name that already exists
	ErrCodeDuplicateSchema = "42P06"
)

// IsUniqueViolation checks if an error is a unique constraint violation
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == ErrCodeUniqueViolation
	}
	return false
}

// IsCheckViolation checks if an error is a check constraint violation
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == ErrCodeCheckViolation
	}
	return false
}

// IsRLSViolation checks if an error is a row-level security policy
// rejection. Postgres reports a blocked INSERT/UPDATE as a new-row
// policy violation under SQLSTATE 42501.
func IsRLSViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == ErrCodeInsufficientPrivilege
	}
	return false
}

// IsDuplicateSchema checks if an error is a CREATE SCHEMA collision
func IsDuplicateSchema(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == ErrCodeDuplicateSchema
	}
	return false
}
