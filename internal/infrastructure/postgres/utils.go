package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Código de error de PostgreSQL para violación de constraint único.
const pgUniqueViolation = "23505"

// isUniqueViolation detecta la violación de un índice único (el índice parcial
// de turno abierto por caja, el folio único por sucursal) para mapearla a un
// conflicto de dominio en lugar de un error de infraestructura.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), pgUniqueViolation)
}
