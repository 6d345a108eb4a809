package pos

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

// State is the checkout state of a POS session.
type State string

const (
	StateIdle       State = "idle"
	StateCommitting State = "committing"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

const dateLayout = "2006-01-02"

// Catalog is the sellable list a session snapshots, with a forced reload
// used after stock has changed.
type Catalog interface {
	CatalogSource
	Reload(ctx context.Context) ([]domain.Medicine, error)
}

// Receipt is what a successful checkout leaves behind for the invoice.
type Receipt struct {
	Customer         string     `json:"customer"`
	Date             string     `json:"date"`
	PaymentMethod    string     `json:"payment_method"`
	Lines            []CartLine `json:"lines"`
	Totals           Totals     `json:"totals"`
	SaleIDs          []int64    `json:"sale_ids"`
	InvoiceRequested bool       `json:"invoice_requested"`
	InvoicePrinted   bool       `json:"invoice_printed"`
}

// View is a point-in-time copy of a session returned by every command.
type View struct {
	ID            string     `json:"session_id"`
	Customer      string     `json:"customer_name"`
	Date          string     `json:"transaction_date"`
	PaymentMethod string     `json:"payment_method"`
	State         State      `json:"state"`
	Lines         []CartLine `json:"lines"`
	Totals        Totals     `json:"totals"`
	CatalogSize   int        `json:"catalog_size"`
	LastError     string     `json:"last_error,omitempty"`
	Receipt       *Receipt   `json:"receipt,omitempty"`
}

// CheckoutRequest carries the details chosen when confirming the sale.
// Empty fields keep the session's current values.
type CheckoutRequest struct {
	PaymentMethod string
	Date          string
	PrintInvoice  bool
}

type session struct {
	id     string
	userID int64

	mu        sync.Mutex
	snapshot  *Snapshot
	cart      Cart
	customer  string
	date      string
	method    string
	state     State
	lastError string
	receipt   *Receipt
}

type sessionEntry struct {
	sess    *session
	touched time.Time
}

// SessionStore owns the open POS sessions. Each session is guarded by its
// own mutex; the store mutex only guards the index.
type SessionStore struct {
	catalog   Catalog
	committer *Committer
	pricing   Pricing
	renderer  *Renderer
	ttl       time.Duration
	now       func() time.Time
	logger    *log.Logger

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewSessionStore(catalog Catalog, committer *Committer, pricing Pricing, renderer *Renderer, ttl time.Duration, logger *log.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &SessionStore{
		catalog:   catalog,
		committer: committer,
		pricing:   pricing,
		renderer:  renderer,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
		sessions:  make(map[string]*sessionEntry),
	}
}

// Open snapshots the catalog and starts an empty session for userID.
func (s *SessionStore) Open(ctx context.Context, userID int64) (View, error) {
	snap, err := LoadSnapshot(ctx, s.catalog)
	if err != nil {
		return View{}, err
	}
	sess := &session{
		id:       uuid.NewString(),
		userID:   userID,
		snapshot: snap,
		date:     s.now().Format(dateLayout),
		method:   domain.PaymentMethods[0],
		state:    StateIdle,
	}

	s.mu.Lock()
	s.sweepLocked()
	s.sessions[sess.id] = &sessionEntry{sess: sess, touched: s.now()}
	s.mu.Unlock()

	s.logger.Printf("pos: opened session=%s user=%d catalog=%d", sess.id, userID, snap.Len())
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess), nil
}

func (s *SessionStore) Get(userID int64, id string) (View, error) {
	sess, err := s.lookup(userID, id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess), nil
}

// Search queries the session's catalog snapshot.
func (s *SessionStore) Search(userID int64, id, query string, limit int) ([]domain.Medicine, error) {
	sess, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot.Search(query, limit), nil
}

func (s *SessionStore) AddItem(userID int64, id, medicineID string, quantity int64) (View, error) {
	return s.mutate(userID, id, func(sess *session) error {
		item, ok := sess.snapshot.Lookup(medicineID)
		if !ok {
			return ErrItemNotInCatalog
		}
		return sess.cart.Add(item, quantity)
	})
}

// RemoveItem drops the cart line at index; removed is false for an invalid
// index, which is not an error.
func (s *SessionStore) RemoveItem(userID int64, id string, index int) (view View, removed bool, err error) {
	view, err = s.mutate(userID, id, func(sess *session) error {
		removed = sess.cart.Remove(index)
		return nil
	})
	return view, removed, err
}

func (s *SessionStore) SetCustomer(userID int64, id, customer string) (View, error) {
	return s.mutate(userID, id, func(sess *session) error {
		sess.customer = strings.TrimSpace(customer)
		return nil
	})
}

// Checkout commits the cart. Validation failures leave the session as it
// was; commit failures move it to StateFailed with the cart retained. The
// session lock is released while committing so a concurrent checkout sees
// StateCommitting and is refused.
func (s *SessionStore) Checkout(ctx context.Context, userID int64, id string, req CheckoutRequest) (View, error) {
	sess, err := s.lookup(userID, id)
	if err != nil {
		return View{}, err
	}

	sess.mu.Lock()
	if sess.state == StateCommitting {
		sess.mu.Unlock()
		return View{}, ErrCheckoutInProgress
	}
	method := sess.method
	if req.PaymentMethod != "" {
		method = req.PaymentMethod
	}
	date := sess.date
	if req.Date != "" {
		date = req.Date
	}
	if err := validateCheckout(sess.cart.Len(), method, date); err != nil {
		view := s.viewLocked(sess)
		sess.mu.Unlock()
		return view, err
	}

	sess.method = method
	sess.date = date
	sess.state = StateCommitting
	sess.lastError = ""
	order := Order{Lines: sess.cart.Lines(), PaymentMethod: method, CustomerName: sess.customer}
	if userID > 0 {
		uid := userID
		order.UserID = &uid
	}
	customer := sess.customer
	sess.mu.Unlock()

	sales, commitErr := s.committer.Commit(ctx, order)

	var reloaded *Snapshot
	if commitErr == nil {
		items, err := s.catalog.Reload(ctx)
		if err != nil {
			s.logger.Printf("pos: session=%s snapshot reload failed: %v", id, err)
		} else {
			reloaded = NewSnapshot(items, s.now().UTC())
		}
	}

	s.touch(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if commitErr != nil {
		sess.state = StateFailed
		sess.lastError = commitErr.Error()
		return s.viewLocked(sess), commitErr
	}

	receipt := &Receipt{
		Customer:         customer,
		Date:             date,
		PaymentMethod:    method,
		Lines:            order.Lines,
		Totals:           s.pricing.Compute(order.Lines),
		SaleIDs:          make([]int64, 0, len(sales)),
		InvoiceRequested: req.PrintInvoice,
	}
	if receipt.Customer == "" {
		receipt.Customer = domain.DefaultCustomer
	}
	for _, sale := range sales {
		receipt.SaleIDs = append(receipt.SaleIDs, sale.ID)
	}
	sess.receipt = receipt
	sess.state = StateSuccess
	sess.cart.Clear()
	sess.customer = ""
	if reloaded != nil {
		sess.snapshot = reloaded
	}
	s.logger.Printf("pos: session=%s checkout lines=%d total=%s", id, len(sales), receipt.Totals.Total)
	return s.viewLocked(sess), nil
}

// Label renders the prescription label for the cart line at index.
func (s *SessionStore) Label(userID int64, id string, index int, opener SurfaceOpener) error {
	sess, err := s.lookup(userID, id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	line, ok := sess.cart.Line(index)
	customer := sess.customer
	sess.mu.Unlock()
	if !ok {
		return ErrLineNotFound
	}

	doc, err := s.renderer.RenderLabel(line, customer)
	if err != nil {
		return err
	}
	return Print(opener, "label", doc)
}

// Invoice prints the last receipt's invoice once, and only when the
// checkout asked for it.
func (s *SessionStore) Invoice(userID int64, id string, opener SurfaceOpener) error {
	sess, err := s.lookup(userID, id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	rc := sess.receipt
	if rc == nil || !rc.InvoiceRequested || rc.InvoicePrinted {
		return ErrInvoiceUnavailable
	}
	doc, err := s.renderer.RenderInvoice(*rc)
	if err != nil {
		return err
	}
	if err := Print(opener, "invoice", doc); err != nil {
		return err
	}
	rc.InvoicePrinted = true
	return nil
}

func (s *SessionStore) Close(userID int64, id string) error {
	if _, err := s.lookup(userID, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.logger.Printf("pos: closed session=%s user=%d", id, userID)
	return nil
}

// Run evicts idle sessions every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.sweepLocked()
			s.mu.Unlock()
		}
	}
}

func (s *SessionStore) mutate(userID int64, id string, fn func(*session) error) (View, error) {
	sess, err := s.lookup(userID, id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state == StateCommitting {
		return s.viewLocked(sess), ErrCheckoutInProgress
	}
	if err := fn(sess); err != nil {
		return s.viewLocked(sess), err
	}
	sess.state = StateIdle
	sess.lastError = ""
	return s.viewLocked(sess), nil
}

func (s *SessionStore) lookup(userID int64, id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok || entry.sess.userID != userID {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if now.Sub(entry.touched) > s.ttl {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	entry.touched = now
	return entry.sess, nil
}

func (s *SessionStore) touch(id string) {
	s.mu.Lock()
	if entry, ok := s.sessions[id]; ok {
		entry.touched = s.now()
	}
	s.mu.Unlock()
}

func (s *SessionStore) sweepLocked() {
	now := s.now()
	for id, entry := range s.sessions {
		if now.Sub(entry.touched) > s.ttl {
			delete(s.sessions, id)
			s.logger.Printf("pos: expired session=%s", id)
		}
	}
}

func (s *SessionStore) viewLocked(sess *session) View {
	lines := sess.cart.Lines()
	v := View{
		ID:            sess.id,
		Customer:      sess.customer,
		Date:          sess.date,
		PaymentMethod: sess.method,
		State:         sess.state,
		Lines:         lines,
		Totals:        s.pricing.Compute(lines),
		CatalogSize:   sess.snapshot.Len(),
		LastError:     sess.lastError,
	}
	if sess.receipt != nil {
		rc := *sess.receipt
		v.Receipt = &rc
	}
	return v
}

func validateCheckout(lines int, method, date string) error {
	if lines == 0 {
		return ErrEmptyCart
	}
	if !domain.IsPaymentMethod(method) {
		return ErrUnknownPaymentMethod
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
