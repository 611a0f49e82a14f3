package postgres

import (
	"context"
	"database/sql"

	"github.com/mkrhub/controlhub/internal/domain/payment"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/postgres"
	"github.com/mkrhub/controlhub/internal/types"
)

const paymentColumns = `id, owner_id, invoice_id, amount, paid_at, method, notes, created_at`

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewPaymentRepository creates an owner scoped payment repository
func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	ownerID, err := types.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	p.OwnerID = ownerID

	// the invoice must belong to the same owner; the insert selects from it
	// so a foreign invoice id inserts nothing
	query := `
		INSERT INTO payments (id, owner_id, invoice_id, amount, paid_at, method, notes, created_at)
		SELECT :id, :owner_id, :invoice_id, :amount, :paid_at, :method, :notes, :created_at
		FROM invoices
		WHERE id = :invoice_id AND owner_id = :owner_id`

	r.logger.Debugw("creating payment",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"owner_id", ownerID,
		"amount", p.Amount.String(),
	)

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return dbError(err, "failed to create payment")
	}
	return expectOneRow(result, "invoice", p.InvoiceID)
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	ownerID, err := types.RequireOwnerID(ctx)
	if err != nil {
		return nil, err
	}
	if filter == nil || filter.InvoiceID == "" {
		return nil, notFound("invoice", "")
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE invoice_id = ? AND owner_id = ?`
	if filter.GetOrder() == types.OrderDesc {
		query += ` ORDER BY created_at DESC, id DESC`
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}
	args := []interface{}{filter.InvoiceID, ownerID}
	if !filter.IsUnlimited() {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.GetLimit(), filter.GetOffset())
	}

	payments := make([]*payment.Payment, 0)
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, dbError(err, "failed to list payments")
	}
	return payments, nil
}

func expectOneRow(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return dbError(err, "failed to read affected rows")
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}
