package postgres

import (
	"database/sql"

	ierr "github.com/mkrhub/controlhub/internal/errors"
)

// notFound is what a caller sees both for a missing row and for a row owned
// by someone else
func notFound(entity, id string) error {
	return ierr.NewErrorf("%s not found", entity).
		WithHintf("%s not found", entityDisplayName(entity)).
		WithReportableDetails(map[string]any{
			"id": id,
		}).
		Mark(ierr.ErrNotFound)
}

func dbError(err error, msg string) error {
	return ierr.WithError(err).
		WithMessage(msg).
		WithHint("Something went wrong while saving your changes, please try again").
		Mark(ierr.ErrDatabase)
}

func mapGetError(err error, entity, id string) error {
	if err == sql.ErrNoRows {
		return notFound(entity, id)
	}
	return dbError(err, "failed to get "+entity)
}

func entityDisplayName(entity string) string {
	switch entity {
	case "invoice":
		return "Invoice"
	case "payment":
		return "Payment"
	default:
		return entity
	}
}
