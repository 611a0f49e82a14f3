package invoice

import (
	"strings"
	"time"

	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents the invoice domain model. Balance is derived and only
// ever written by the record services.
type Invoice struct {
	ID         string              `db:"id" json:"id"`
	OwnerID    string              `db:"owner_id" json:"owner_id"`
	Ref        string              `db:"ref" json:"ref"`
	ClientName string              `db:"client_name" json:"client_name"`
	EventDate  *types.Date         `db:"event_date" json:"event_date"`
	Total      decimal.Decimal     `db:"total" json:"total" swaggertype:"string"`
	Deposit    decimal.Decimal     `db:"deposit" json:"deposit" swaggertype:"string"`
	Balance    decimal.Decimal     `db:"balance" json:"balance" swaggertype:"string"`
	Status     types.InvoiceStatus `db:"status" json:"status"`
	Notes      *string             `db:"notes" json:"notes"`
	CreatedAt  time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `db:"updated_at" json:"updated_at"`
}

// Validate checks the user editable fields
func (i *Invoice) Validate() error {
	if strings.TrimSpace(i.Ref) == "" {
		return ierr.NewError("ref is required").
			WithHint("Please provide an invoice reference").
			Mark(ierr.ErrValidation)
	}
	if strings.TrimSpace(i.ClientName) == "" {
		return ierr.NewError("client_name is required").
			WithHint("Please provide a client name").
			Mark(ierr.ErrValidation)
	}
	return i.Status.Validate()
}

// IsCancelled reports whether the owner has cancelled the invoice
func (i *Invoice) IsCancelled() bool {
	return i.Status == types.InvoiceStatusCancelled
}

// GetNotes returns the notes or an empty string
func (i *Invoice) GetNotes() string {
	if i.Notes == nil {
		return ""
	}
	return *i.Notes
}
