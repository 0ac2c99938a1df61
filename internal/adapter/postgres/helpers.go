package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stewardhq/steward/internal/domain"
)

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

// notFoundWrap checks whether err is pgx.ErrNoRows and, if so, wraps
// domain.ErrNotFound with the given message. Otherwise it wraps the
// original error.
func notFoundWrap(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// execExpectOne verifies that an Exec affected exactly one row. If not
// (and err is nil), it returns domain.ErrNotFound with the given message.
func execExpectOne(tag pgconn.CommandTag, err error, format string, args ...any) error {
	if err != nil {
		return fmt.Errorf(fmt.Sprintf(format, args...)+": %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf(fmt.Sprintf(format, args...)+": %w", domain.ErrNotFound)
	}
	return nil
}
