package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mkrhub/controlhub/internal/domain/invoice"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/postgres"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/shopspring/decimal"
)

const invoiceColumns = `id, owner_id, ref, client_name, event_date, total, deposit, balance,
	status, notes, created_at, updated_at`

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewInvoiceRepository creates an owner scoped invoice repository
func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	ownerID, err := types.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	inv.OwnerID = ownerID

	query := `
		INSERT INTO invoices (
			id, owner_id, ref, client_name, event_date, total, deposit, balance,
			status, notes, created_at, updated_at
		) VALUES (
			:id, :owner_id, :ref, :client_name, :event_date, :total, :deposit, :balance,
			:status, :notes, :created_at, :updated_at
		)`

	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"owner_id", ownerID,
	)

	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		return dbError(err, "failed to create invoice")
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	ownerID, err := types.RequireOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	var inv invoice.Invoice
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ? AND owner_id = ?`
	if err := r.db.GetContext(ctx, &inv, query, id, ownerID); err != nil {
		return nil, mapGetError(err, "invoice", id)
	}
	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	ownerID, err := types.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	inv.OwnerID = ownerID
	inv.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE invoices SET
			ref = :ref,
			client_name = :client_name,
			event_date = :event_date,
			total = :total,
			deposit = :deposit,
			balance = :balance,
			status = :status,
			notes = :notes,
			updated_at = :updated_at
		WHERE id = :id AND owner_id = :owner_id`

	r.logger.Debugw("updating invoice",
		"invoice_id", inv.ID,
		"owner_id", ownerID,
	)

	result, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		return dbError(err, "failed to update invoice")
	}
	return expectOneRow(result, "invoice", inv.ID)
}

func (r *invoiceRepository) UpdateReconciliation(ctx context.Context, id string, balance decimal.Decimal, status types.InvoiceStatus) error {
	ownerID, err := types.RequireOwnerID(ctx)
	if err != nil {
		return err
	}

	r.logger.Debugw("updating invoice balance",
		"invoice_id", id,
		"owner_id", ownerID,
		"balance", balance.String(),
		"status", status,
	)

	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET balance = ?, status = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		balance, status, time.Now().UTC(), id, ownerID,
	)
	if err != nil {
		return dbError(err, "failed to update invoice balance")
	}
	return expectOneRow(result, "invoice", id)
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}

	where, args, err := r.where(ctx, filter)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + invoiceColumns + ` FROM invoices` + where)
	if filter.GetOrder() == types.OrderAsc {
		sb.WriteString(` ORDER BY created_at ASC, id ASC`)
	} else {
		sb.WriteString(` ORDER BY created_at DESC, id DESC`)
	}
	if !filter.IsUnlimited() {
		sb.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, filter.GetLimit(), filter.GetOffset())
	}

	invoices := make([]*invoice.Invoice, 0)
	if err := r.db.SelectContext(ctx, &invoices, sb.String(), args...); err != nil {
		return nil, dbError(err, "failed to list invoices")
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}

	where, args, err := r.where(ctx, filter)
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM invoices`+where, args...); err != nil {
		return 0, dbError(err, "failed to count invoices")
	}
	return count, nil
}

// where always starts with the owner condition
func (r *invoiceRepository) where(ctx context.Context, filter *types.InvoiceFilter) (string, []interface{}, error) {
	ownerID, err := types.RequireOwnerID(ctx)
	if err != nil {
		return "", nil, err
	}

	conditions := []string{"owner_id = ?"}
	args := []interface{}{ownerID}

	if len(filter.InvoiceIDs) > 0 {
		q, inArgs, err := sqlx.In("id IN (?)", filter.InvoiceIDs)
		if err != nil {
			return "", nil, dbError(err, "failed to build invoice filter")
		}
		conditions = append(conditions, q)
		args = append(args, inArgs...)
	}
	if len(filter.Statuses) > 0 {
		q, inArgs, err := sqlx.In("status IN (?)", filter.Statuses)
		if err != nil {
			return "", nil, dbError(err, "failed to build invoice filter")
		}
		conditions = append(conditions, q)
		args = append(args, inArgs...)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}
