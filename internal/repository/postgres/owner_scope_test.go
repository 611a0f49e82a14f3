package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mkrhub/controlhub/internal/domain/invoice"
	"github.com/mkrhub/controlhub/internal/domain/payment"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/postgres"
	"github.com/mkrhub/controlhub/internal/testutil"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// recordedQuery is one statement as it reached the driver, after rebinding
type recordedQuery struct {
	query string
	args  []driver.Value
}

// recordingConnector is a database/sql connector that answers every
// statement without a database and keeps what it was sent. Exec reports
// rowsAffected rows; SELECT COUNT returns count, other queries return nothing.
type recordingConnector struct {
	mu           sync.Mutex
	queries      []recordedQuery
	rowsAffected int64
	count        int64
}

func (c *recordingConnector) Connect(context.Context) (driver.Conn, error) {
	return &recordingConn{c: c}, nil
}

func (c *recordingConnector) Driver() driver.Driver {
	return recordingDriver{c: c}
}

func (c *recordingConnector) record(query string, args []driver.NamedValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := make([]driver.Value, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	c.queries = append(c.queries, recordedQuery{query: strings.Join(strings.Fields(query), " "), args: values})
}

func (c *recordingConnector) recorded() []recordedQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]recordedQuery(nil), c.queries...)
}

type recordingDriver struct{ c *recordingConnector }

func (d recordingDriver) Open(string) (driver.Conn, error) { return &recordingConn{c: d.c}, nil }

type recordingConn struct{ c *recordingConnector }

func (c *recordingConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *recordingConn) Close() error                        { return nil }
func (c *recordingConn) Begin() (driver.Tx, error)           { return recordingTx{}, nil }

func (c *recordingConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.c.record(query, args)
	return driver.RowsAffected(c.c.rowsAffected), nil
}

func (c *recordingConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.c.record(query, args)
	if strings.HasPrefix(strings.TrimSpace(query), "SELECT COUNT(*)") {
		return &recordingRows{columns: []string{"count"}, values: [][]driver.Value{{c.c.count}}}, nil
	}
	return &recordingRows{columns: []string{"id"}}, nil
}

type recordingTx struct{}

func (recordingTx) Commit() error   { return nil }
func (recordingTx) Rollback() error { return nil }

type recordingRows struct {
	columns []string
	values  [][]driver.Value
}

func (r *recordingRows) Columns() []string { return r.columns }
func (r *recordingRows) Close() error      { return nil }

func (r *recordingRows) Next(dest []driver.Value) error {
	if len(r.values) == 0 {
		return io.EOF
	}
	copy(dest, r.values[0])
	r.values = r.values[1:]
	return nil
}

type OwnerScopeSuite struct {
	suite.Suite
	ctx         context.Context
	conn        *recordingConnector
	invoiceRepo invoice.Repository
	paymentRepo payment.Repository
}

func TestOwnerScope(t *testing.T) {
	suite.Run(t, new(OwnerScopeSuite))
}

func (s *OwnerScopeSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.conn = &recordingConnector{rowsAffected: 1, count: 2}

	log := logger.NewNoopLogger()
	db := postgres.NewFromSqlx(sqlx.NewDb(sql.OpenDB(s.conn), "postgres"), log)
	s.invoiceRepo = NewInvoiceRepository(db, log)
	s.paymentRepo = NewPaymentRepository(db, log)
}

func (s *OwnerScopeSuite) lastQuery() recordedQuery {
	queries := s.conn.recorded()
	s.Require().NotEmpty(queries)
	return queries[len(queries)-1]
}

func (s *OwnerScopeSuite) newInvoice() *invoice.Invoice {
	now := time.Now().UTC()
	return &invoice.Invoice{
		ID:         types.GenerateUUID(),
		OwnerID:    testutil.OtherOwnerID,
		Ref:        "INV-1",
		ClientName: "Client",
		Total:      decimal.NewFromInt(100),
		Status:     types.InvoiceStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *OwnerScopeSuite) TestGetScopesByOwner() {
	_, err := s.invoiceRepo.Get(s.ctx, "inv_1")
	s.True(ierr.IsNotFound(err), "no row reads as not found")

	q := s.lastQuery()
	s.Contains(q.query, "WHERE id = $1 AND owner_id = $2")
	s.Equal([]driver.Value{"inv_1", testutil.DefaultOwnerID}, q.args)
}

func (s *OwnerScopeSuite) TestCreateTakesOwnerFromContext() {
	inv := s.newInvoice()
	s.Require().NoError(s.invoiceRepo.Create(s.ctx, inv))

	s.Equal(testutil.DefaultOwnerID, inv.OwnerID)
	q := s.lastQuery()
	s.Contains(q.query, "INSERT INTO invoices")
	s.Contains(q.args, driver.Value(testutil.DefaultOwnerID))
	s.NotContains(q.args, driver.Value(testutil.OtherOwnerID))
}

func (s *OwnerScopeSuite) TestUpdateScopesByOwner() {
	inv := s.newInvoice()
	s.Require().NoError(s.invoiceRepo.Update(s.ctx, inv))

	q := s.lastQuery()
	s.Contains(q.query, "AND owner_id = $")
	s.Equal(driver.Value(testutil.DefaultOwnerID), q.args[len(q.args)-1])

	s.conn.rowsAffected = 0
	err := s.invoiceRepo.Update(s.ctx, s.newInvoice())
	s.True(ierr.IsNotFound(err), "a foreign invoice updates nothing")
}

func (s *OwnerScopeSuite) TestUpdateReconciliationScopesByOwner() {
	s.Require().NoError(s.invoiceRepo.UpdateReconciliation(s.ctx, "inv_1", decimal.NewFromInt(40), types.InvoiceStatusPaid))

	q := s.lastQuery()
	s.Contains(q.query, "UPDATE invoices SET balance = $1, status = $2, updated_at = $3 WHERE id = $4 AND owner_id = $5")
	s.Equal(driver.Value("inv_1"), q.args[3])
	s.Equal(driver.Value(testutil.DefaultOwnerID), q.args[4])

	s.conn.rowsAffected = 0
	err := s.invoiceRepo.UpdateReconciliation(s.ctx, "inv_1", decimal.Zero, types.InvoiceStatusPaid)
	s.True(ierr.IsNotFound(err))
}

func (s *OwnerScopeSuite) TestListAndCountStartWithOwner() {
	filter := types.NewInvoiceFilter()
	filter.Statuses = []types.InvoiceStatus{types.InvoiceStatusDraft, types.InvoiceStatusBooked}

	_, err := s.invoiceRepo.List(s.ctx, filter)
	s.Require().NoError(err)
	q := s.lastQuery()
	s.Contains(q.query, "WHERE owner_id = $1 AND status IN ($2, $3)")
	s.Equal(driver.Value(testutil.DefaultOwnerID), q.args[0])

	count, err := s.invoiceRepo.Count(s.ctx, filter)
	s.Require().NoError(err)
	s.Equal(2, count)
	q = s.lastQuery()
	s.Contains(q.query, "SELECT COUNT(*) FROM invoices WHERE owner_id = $1")
	s.Equal(driver.Value(testutil.DefaultOwnerID), q.args[0])
}

func (s *OwnerScopeSuite) TestPaymentInsertSelectsFromOwnedInvoice() {
	p := &payment.Payment{
		ID:        types.GenerateUUID(),
		OwnerID:   testutil.OtherOwnerID,
		InvoiceID: "inv_1",
		Amount:    decimal.NewFromInt(10),
		CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.paymentRepo.Create(s.ctx, p))

	q := s.lastQuery()
	s.Contains(q.query, "INSERT INTO payments")
	s.Contains(q.query, "FROM invoices WHERE id = $")
	s.Contains(q.query, "AND owner_id = $")
	s.Contains(q.args, driver.Value(testutil.DefaultOwnerID))
	s.NotContains(q.args, driver.Value(testutil.OtherOwnerID))

	s.conn.rowsAffected = 0
	err := s.paymentRepo.Create(s.ctx, p)
	s.True(ierr.IsNotFound(err), "a foreign invoice inserts no payment")
}

func (s *OwnerScopeSuite) TestPaymentListScopesByOwner() {
	_, err := s.paymentRepo.List(s.ctx, types.NewPaymentFilter("inv_1"))
	s.Require().NoError(err)

	q := s.lastQuery()
	s.Contains(q.query, "WHERE invoice_id = $1 AND owner_id = $2 ORDER BY created_at ASC")
	s.Equal([]driver.Value{"inv_1", testutil.DefaultOwnerID}, q.args)
}

func (s *OwnerScopeSuite) TestEveryStatementCarriesOwner() {
	_, _ = s.invoiceRepo.Get(s.ctx, "inv_1")
	_ = s.invoiceRepo.Create(s.ctx, s.newInvoice())
	_ = s.invoiceRepo.Update(s.ctx, s.newInvoice())
	_ = s.invoiceRepo.UpdateReconciliation(s.ctx, "inv_1", decimal.Zero, types.InvoiceStatusDraft)
	_, _ = s.invoiceRepo.List(s.ctx, nil)
	_, _ = s.invoiceRepo.Count(s.ctx, nil)
	_, _ = s.paymentRepo.List(s.ctx, types.NewPaymentFilter("inv_1"))

	queries := s.conn.recorded()
	s.Len(queries, 7)
	for _, q := range queries {
		s.Contains(q.query, "owner_id", q.query)
		s.Contains(q.args, driver.Value(testutil.DefaultOwnerID), q.query)
	}
}

func (s *OwnerScopeSuite) TestNoOwnerNoQuery() {
	ctx := context.Background()

	_, err := s.invoiceRepo.Get(ctx, "inv_1")
	s.Error(err)
	_, err = s.invoiceRepo.List(ctx, nil)
	s.Error(err)
	err = s.invoiceRepo.UpdateReconciliation(ctx, "inv_1", decimal.Zero, types.InvoiceStatusDraft)
	s.Error(err)
	_, err = s.paymentRepo.List(ctx, types.NewPaymentFilter("inv_1"))
	s.Error(err)

	s.Empty(s.conn.recorded())
}
