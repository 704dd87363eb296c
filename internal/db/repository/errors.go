// Package repository implements the domain repository ports on the Postgres
// ORM. Driver errors are mapped into the apperror taxonomy at this boundary
// so services and handlers never see raw database errors.
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"proofdeck/internal/apperror"
)

// Postgres unique-violation SQLSTATE.
const pgUniqueViolation = "23505"

// mapDBError translates ORM/driver failures into taxonomy errors. Anything
// unrecognized passes through and becomes a 500 at the request boundary.
func mapDBError(err error, resource, identifier string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFound(resource, identifier)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperror.NewConflict(fmt.Sprintf("%s already exists", resource)).
			WithContext("constraint", pgErr.ConstraintName)
	}
	return err
}
