// Package repository implements the domain mapping stores using SQLite.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"classlab/internal/domain"
)

func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "mapping not found"}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &domain.ConflictError{Message: "mapping already exists"}
	}
	return err
}

// requireRow converts a no-op DELETE into NotFound so removal reports whether
// a mapping actually existed.
func requireRow(res sql.Result, err error) error {
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Message: "mapping not found"}
	}
	return nil
}
