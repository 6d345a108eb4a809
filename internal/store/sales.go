package store

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

const saleColumns = `id, medicine_id, quantity, total_price, payment_method, customer_name, user_id, created_at`

// SaleLineWriter records a single sold line: the sale row and the matching
// stock decrement.
type SaleLineWriter interface {
	InsertSale(ctx context.Context, sale *domain.Sale) error
	DecrementStock(ctx context.Context, medicineID string, quantity int64) error
}

type saleWriter struct {
	ext    sqlx.ExtContext
	now    func() time.Time
	logger *log.Logger
}

func (s *Store) writer(ext sqlx.ExtContext) *saleWriter {
	return &saleWriter{ext: ext, now: s.now, logger: s.logger}
}

// InsertSale stores the sale row and fills in its ID and CreatedAt.
func (s *Store) InsertSale(ctx context.Context, sale *domain.Sale) error {
	return s.writer(s.db).InsertSale(ctx, sale)
}

// DecrementStock subtracts quantity only while enough stock remains.
func (s *Store) DecrementStock(ctx context.Context, medicineID string, quantity int64) error {
	return s.writer(s.db).DecrementStock(ctx, medicineID, quantity)
}

// WithinSalesTx runs fn inside one transaction, committing when fn returns nil.
func (s *Store) WithinSalesTx(ctx context.Context, fn func(SaleLineWriter) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sales tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(s.writer(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sales tx: %w", err)
	}
	return nil
}

func (w *saleWriter) InsertSale(ctx context.Context, sale *domain.Sale) error {
	if strings.TrimSpace(sale.CustomerName) == "" {
		sale.CustomerName = domain.DefaultCustomer
	}
	sale.CreatedAt = w.now()
	q := w.ext.Rebind(`INSERT INTO sales (medicine_id, quantity, total_price, payment_method, customer_name, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := w.ext.QueryRowxContext(ctx, q, sale.MedicineID, sale.Quantity, sale.TotalPrice, sale.PaymentMethod, sale.CustomerName, sale.UserID, sale.CreatedAt).Scan(&sale.ID); err != nil {
		return fmt.Errorf("insert sale medicine=%s: %w", sale.MedicineID, err)
	}
	return nil
}

func (w *saleWriter) DecrementStock(ctx context.Context, medicineID string, quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidInput
	}
	q := w.ext.Rebind(`UPDATE medicines SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`)
	res, err := w.ext.ExecContext(ctx, q, quantity, w.now(), medicineID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock medicine=%s: %w", medicineID, err)
	}
	n, err := rowsAffected(res, "decrement stock")
	if err != nil {
		return err
	}
	if n == 0 {
		w.logger.Printf("sale store: decrement refused medicine=%s qty=%d", medicineID, quantity)
		return fmt.Errorf("medicine %s: %w", medicineID, domain.ErrInsufficientStock)
	}
	return nil
}

// SaleFilter narrows ListSales. To is exclusive.
type SaleFilter struct {
	From   *time.Time
	To     *time.Time
	Method string
	Newest bool
}

func (s *Store) ListSales(ctx context.Context, f SaleFilter) ([]domain.Sale, error) {
	var (
		clauses []string
		args    []any
	)
	if f.From != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		clauses = append(clauses, "created_at < ?")
		args = append(args, f.To.UTC())
	}
	if strings.TrimSpace(f.Method) != "" {
		clauses = append(clauses, `LOWER(payment_method) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.Method))
	}

	q := `SELECT ` + saleColumns + ` FROM sales`
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}
	if f.Newest {
		q += " ORDER BY created_at DESC, id DESC"
	} else {
		q += " ORDER BY created_at ASC, id ASC"
	}

	sales := []domain.Sale{}
	if err := s.db.SelectContext(ctx, &sales, s.rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// SalesTotals aggregates all recorded sales.
type SalesTotals struct {
	Revenue  decimal.Decimal `db:"revenue" json:"revenue"`
	Quantity int64           `db:"quantity" json:"quantity"`
	Count    int64           `db:"count" json:"count"`
}

func (s *Store) SalesTotals(ctx context.Context) (SalesTotals, error) {
	var t SalesTotals
	q := `SELECT COALESCE(SUM(total_price), 0) AS revenue, COALESCE(SUM(quantity), 0) AS quantity, COUNT(*) AS count FROM sales`
	if err := s.db.GetContext(ctx, &t, q); err != nil {
		return SalesTotals{}, fmt.Errorf("sales totals: %w", err)
	}
	return t, nil
}
