package pos

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/store"
)

// Mode selects how a multi-line checkout is committed.
type Mode string

const (
	// ModeSequential commits line by line; a failure keeps earlier lines.
	ModeSequential Mode = "sequential"
	// ModeAtomic commits every line in a single transaction.
	ModeAtomic Mode = "atomic"
)

// SalesStore is the storage boundary used by the committer.
type SalesStore interface {
	WithinSalesTx(ctx context.Context, fn func(store.SaleLineWriter) error) error
}

// Observer receives checkout outcomes, normally the prometheus counters.
type Observer interface {
	CheckoutAttempted()
	CheckoutSucceeded(lines int)
	CheckoutFailed(reason string, committedLines int)
}

type nopObserver struct{}

func (nopObserver) CheckoutAttempted() {}
func (nopObserver) CheckoutSucceeded(int) {}
func (nopObserver) CheckoutFailed(string, int) {}

// Order is what gets committed: the cart lines and their sale details.
type Order struct {
	Lines         []CartLine
	PaymentMethod string
	CustomerName  string
	UserID        *int64
}

type Committer struct {
	store    SalesStore
	mode     Mode
	observer Observer
	logger   *log.Logger
}

func NewCommitter(s SalesStore, mode Mode, observer Observer, logger *log.Logger) *Committer {
	if mode != ModeAtomic {
		mode = ModeSequential
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Committer{store: s, mode: mode, observer: observer, logger: logger}
}

func (c *Committer) Mode() Mode { return c.mode }

// Commit records one sale per line and decrements the matching stock. Each
// line's insert and decrement succeed or fail together. In sequential mode
// lines committed before a failure stay committed; in atomic mode nothing is
// kept. Failures during the loop are returned as *CommitError.
func (c *Committer) Commit(ctx context.Context, order Order) ([]domain.Sale, error) {
	c.observer.CheckoutAttempted()

	if len(order.Lines) == 0 {
		c.observer.CheckoutFailed("empty_cart", 0)
		return nil, ErrEmptyCart
	}
	if !domain.IsPaymentMethod(order.PaymentMethod) {
		c.observer.CheckoutFailed("payment_method", 0)
		return nil, ErrUnknownPaymentMethod
	}
	customer := strings.TrimSpace(order.CustomerName)
	if customer == "" {
		customer = domain.DefaultCustomer
	}

	var (
		sales []domain.Sale
		err   error
	)
	if c.mode == ModeAtomic {
		sales, err = c.commitAtomic(ctx, order, customer)
	} else {
		sales, err = c.commitSequential(ctx, order, customer)
	}
	if err != nil {
		var ce *CommitError
		if errors.As(err, &ce) {
			c.observer.CheckoutFailed(failureReason(ce.Err), ce.Committed)
			c.logger.Printf("checkout: mode=%s failed line=%d medicine=%s committed=%d error=%v", c.mode, ce.Index, ce.MedicineID, ce.Committed, ce.Err)
		} else {
			c.observer.CheckoutFailed(failureReason(err), 0)
			c.logger.Printf("checkout: mode=%s failed error=%v", c.mode, err)
		}
		return sales, err
	}

	c.observer.CheckoutSucceeded(len(sales))
	c.logger.Printf("checkout: mode=%s committed lines=%d method=%s customer=%s", c.mode, len(sales), order.PaymentMethod, customer)
	return sales, nil
}

func (c *Committer) commitSequential(ctx context.Context, order Order, customer string) ([]domain.Sale, error) {
	sales := make([]domain.Sale, 0, len(order.Lines))
	for i, line := range order.Lines {
		var sale domain.Sale
		err := c.store.WithinSalesTx(ctx, func(w store.SaleLineWriter) error {
			var err error
			sale, err = commitLine(ctx, w, line, order, customer)
			return err
		})
		if err != nil {
			return sales, &CommitError{Index: i, MedicineID: line.MedicineID, Committed: len(sales), Err: err}
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func (c *Committer) commitAtomic(ctx context.Context, order Order, customer string) ([]domain.Sale, error) {
	var (
		sales  []domain.Sale
		failed *CommitError
	)
	err := c.store.WithinSalesTx(ctx, func(w store.SaleLineWriter) error {
		sales = make([]domain.Sale, 0, len(order.Lines))
		for i, line := range order.Lines {
			sale, err := commitLine(ctx, w, line, order, customer)
			if err != nil {
				failed = &CommitError{Index: i, MedicineID: line.MedicineID, Err: err}
				return err
			}
			sales = append(sales, sale)
		}
		return nil
	})
	if failed != nil {
		return nil, failed
	}
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func commitLine(ctx context.Context, w store.SaleLineWriter, line CartLine, order Order, customer string) (domain.Sale, error) {
	sale := domain.Sale{
		MedicineID:    line.MedicineID,
		Quantity:      line.Quantity,
		TotalPrice:    line.Total,
		PaymentMethod: order.PaymentMethod,
		CustomerName:  customer,
		UserID:        order.UserID,
	}
	if err := w.InsertSale(ctx, &sale); err != nil {
		return domain.Sale{}, err
	}
	if err := w.DecrementStock(ctx, line.MedicineID, line.Quantity); err != nil {
		return domain.Sale{}, err
	}
	return sale, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "store"
	}
}
