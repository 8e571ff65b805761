package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/naturlife/storefront/internal/observability"
)

// observed routes every logical store operation through the DB metrics.
type observed struct {
	prom *observability.Prom
}

func (o observed) observe(op string, fn func() error) error {
	return o.prom.ObserveDB(op, fn)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
